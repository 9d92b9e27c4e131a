package cache

import (
	"encoding/json"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
)

// Results memoizes processed graphs by mode and filter selection.
//
// There is no eviction; the key space is small (five modes times the
// filter combinations actually requested). Clear is the only invalidation
// path and must be called whenever the snapshot changes. Results is safe
// for concurrent use, and concurrent GetOrCompute calls for one key run the
// computation once.
//
// Stored graphs are shared with every caller and must not be mutated.
type Results struct {
	mu      sync.RWMutex
	entries map[string]graph.GraphData
	gen     uint64
	group   singleflight.Group
}

// NewResults creates an empty result cache.
func NewResults() *Results {
	return &Results{entries: make(map[string]graph.GraphData)}
}

// ResultKey returns the canonical key of (mode, sel): the JSON encoding of
// the mode and every filter dimension, deduplicated and sorted. Selection
// order never changes the key.
func ResultKey(mode graph.Mode, sel filter.Selection) string {
	key := struct {
		Mode                              string   `json:"mode"`
		Providers                         []string `json:"providers"`
		Consumers                         []string `json:"consumers"`
		ExtensionPoints                   []string `json:"extensionPoints"`
		ContentConsumersForExtensionPoint []string `json:"contentConsumersForExtensionPoint"`
	}{
		Mode:                              string(mode),
		Providers:                         filter.Dedupe(sel.ContentProviders),
		Consumers:                         filter.Dedupe(sel.ContentConsumers),
		ExtensionPoints:                   filter.Dedupe(sel.ExtensionPoints),
		ContentConsumersForExtensionPoint: filter.Dedupe(sel.ContentConsumersForExtensionPoint),
	}
	data, _ := json.Marshal(key)
	return string(data)
}

// Get returns the graph stored for (mode, sel).
func (r *Results) Get(mode graph.Mode, sel filter.Selection) (graph.GraphData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.entries[ResultKey(mode, sel)]
	return data, ok
}

// Put stores data for (mode, sel), replacing any previous entry.
func (r *Results) Put(mode graph.Mode, sel filter.Selection, data graph.GraphData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[ResultKey(mode, sel)] = data
}

// Clear drops every entry. Computations in flight when Clear is called do
// not store their results.
func (r *Results) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]graph.GraphData)
	r.gen++
}

// Size returns the number of stored entries.
func (r *Results) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// GetOrCompute returns the stored graph for (mode, sel), or computes,
// stores and returns it. hit is false only for the one caller that ran
// compute; callers that waited on it or found a stored entry report a hit.
func (r *Results) GetOrCompute(mode graph.Mode, sel filter.Selection, compute func() graph.GraphData) (data graph.GraphData, hit bool) {
	key := ResultKey(mode, sel)

	r.mu.RLock()
	data, ok := r.entries[key]
	gen := r.gen
	r.mu.RUnlock()
	if ok {
		return data, true
	}

	ran := false
	v, _, _ := r.group.Do(strconv.FormatUint(gen, 10)+"|"+key, func() (any, error) {
		r.mu.RLock()
		cached, ok := r.entries[key]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		ran = true
		computed := compute()

		r.mu.Lock()
		if r.gen == gen {
			r.entries[key] = computed
		}
		r.mu.Unlock()
		return computed, nil
	})
	return v.(graph.GraphData), !ran
}
