package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/extgraph/pkg/cache"
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/httputil"
	"github.com/matzehuels/extgraph/pkg/layout"
	"github.com/matzehuels/extgraph/pkg/observability"
	"github.com/matzehuels/extgraph/pkg/plugin"
	"github.com/matzehuels/extgraph/pkg/process"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the HTTP API and the TUI all use it to avoid duplicating caching
// logic.
//
// The Runner owns the current snapshot and the result cache derived from
// it. Replacing the snapshot clears the result cache. Multiple goroutines
// can safely use the same Runner; graph requests hold a read lock on the
// snapshot for their whole duration, so a graph is never built from one
// snapshot and cached under another.
type Runner struct {
	Cache   cache.Cache    // Byte cache for encoded graphs and layouts
	Keyer   cache.Keyer    // Keys for Cache
	Results *cache.Results // In-memory result cache
	Logger  *log.Logger
	Fetcher plugin.Getter // Fetches snapshots given as URLs

	// TTL is the byte cache entry lifetime; zero uses TTLGraph and TTLLayout.
	TTL time.Duration

	mu       sync.RWMutex
	snap     plugin.Snapshot
	snapHash string
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (byte caching disabled; the result
// cache is always on).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:   c,
		Keyer:   keyer,
		Results: cache.NewResults(),
		Logger:  logger,
		Fetcher: httputil.NewClient(nil, 0),
	}
	r.snapHash = hashSnapshot(plugin.Snapshot{})
	return r
}

// =============================================================================
// Snapshot
// =============================================================================

// SetSnapshot replaces the current snapshot and clears the result cache.
// The snapshot is normalized first; the caller's value is not modified.
func (r *Runner) SetSnapshot(ctx context.Context, snap plugin.Snapshot) {
	snap = snap.Normalize()
	hash := hashSnapshot(snap)

	r.mu.Lock()
	r.snap = snap
	r.snapHash = hash
	removed := r.Results.Size()
	r.Results.Clear()
	r.mu.Unlock()

	observability.Cache().OnCacheClear(ctx, observability.KeyTypeResult, removed)
	r.Logger.Debug("snapshot replaced", "plugins", len(snap), "hash", shortHash(hash), "evicted", removed)
}

// LoadSnapshot reads a snapshot file, or fetches it when path is an http(s)
// URL, and makes it the current snapshot. A failed load keeps the previous
// snapshot.
func (r *Runner) LoadSnapshot(ctx context.Context, path string) error {
	var snap plugin.Snapshot
	var err error
	if plugin.IsURL(path) {
		snap, err = plugin.Fetch(ctx, r.Fetcher, path)
	} else {
		snap, err = plugin.ReadFile(path)
	}
	observability.Pipeline().OnSnapshotLoad(ctx, path, len(snap), err)
	if err != nil {
		return err
	}
	r.SetSnapshot(ctx, snap)
	r.Logger.Info("loaded snapshot", "path", path, "plugins", len(snap))
	return nil
}

// Snapshot returns the current snapshot and its content hash. The snapshot
// is shared and must be treated as read-only.
func (r *Runner) Snapshot() (plugin.Snapshot, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap, r.snapHash
}

func hashSnapshot(snap plugin.Snapshot) string {
	h, err := cache.HashJSON(snap)
	if err != nil {
		// Snapshots only hold strings; encoding cannot fail.
		panic(fmt.Sprintf("hash snapshot: %v", err))
	}
	return h
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// =============================================================================
// Graph
// =============================================================================

// GraphWithCacheInfo builds the graph of the current snapshot for mode and
// sel, returning the effective selection in canonical form and cache hit
// info. Unknown modes fall back to graph.DefaultMode.
//
// Lookups go through the result cache first, keyed by the canonical
// selection, then through the byte cache, and finally run the processor.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, mode graph.Mode, sel filter.Selection) (graph.GraphData, filter.Selection, CacheInfo, error) {
	return r.graph(ctx, mode, sel, false)
}

// Graph is a convenience wrapper that calls GraphWithCacheInfo and discards
// the selection and cache hit info.
func (r *Runner) Graph(ctx context.Context, mode graph.Mode, sel filter.Selection) (graph.GraphData, error) {
	data, _, _, err := r.GraphWithCacheInfo(ctx, mode, sel)
	return data, err
}

func (r *Runner) graph(ctx context.Context, mode graph.Mode, sel filter.Selection, refresh bool) (graph.GraphData, filter.Selection, CacheInfo, error) {
	if err := ctx.Err(); err != nil {
		return graph.GraphData{}, filter.Selection{}, CacheInfo{}, err
	}
	mode = graph.ModeOrDefault(string(mode))

	r.mu.RLock()
	defer r.mu.RUnlock()

	// The unfiltered graph doubles as the candidate source.
	full, info := r.lookup(ctx, mode, filter.Selection{}, filter.Effective{}, refresh)
	eff := sel.Resolve(process.CandidatesOf(full))
	if eff.Unfiltered() {
		return full, filter.Selection{}, info, nil
	}

	canonical := eff.Selection()
	data, info := r.lookup(ctx, mode, canonical, eff, refresh)
	return data, canonical, info, nil
}

// lookup resolves one canonical selection through both cache levels.
// Callers hold r.mu for reading.
func (r *Runner) lookup(ctx context.Context, mode graph.Mode, canonical filter.Selection, eff filter.Effective, refresh bool) (graph.GraphData, CacheInfo) {
	var info CacheInfo
	data, hit := r.Results.GetOrCompute(mode, canonical, func() graph.GraphData {
		key := r.Keyer.GraphKey(r.snapHash, mode, canonical)
		if !refresh {
			if cached, ok := r.readGraph(ctx, key); ok {
				info.GraphHit = true
				return cached
			}
		}
		observability.Cache().OnCacheMiss(ctx, observability.KeyTypeGraph)

		start := time.Now()
		observability.Pipeline().OnProcessStart(ctx, string(mode))
		built := process.Graph(r.snap, mode, eff)
		elapsed := time.Since(start)
		observability.Pipeline().OnProcessComplete(ctx, string(mode), len(built.Nodes), elapsed)
		r.Logger.Debug("processed graph",
			"mode", mode,
			"nodes", len(built.Nodes),
			"edges", len(built.Dependencies),
			"duration", elapsed)

		if encoded, err := graph.MarshalGraph(built); err == nil {
			if err := r.Cache.Set(ctx, key, encoded, r.ttl(TTLGraph)); err != nil {
				r.Logger.Warn("cache graph", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, observability.KeyTypeGraph, len(encoded))
			}
		}
		return built
	})
	if hit {
		info.ResultHit = true
		observability.Cache().OnCacheHit(ctx, observability.KeyTypeResult)
	} else {
		observability.Cache().OnCacheMiss(ctx, observability.KeyTypeResult)
	}
	return data, info
}

func (r *Runner) readGraph(ctx context.Context, key string) (graph.GraphData, bool) {
	encoded, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("read cached graph", "error", err)
		return graph.GraphData{}, false
	}
	if !hit {
		return graph.GraphData{}, false
	}
	data, err := graph.ReadGraph(bytes.NewReader(encoded))
	if err != nil {
		// Corrupt entries are recomputed and overwritten.
		r.Logger.Debug("discard cached graph", "error", err)
		return graph.GraphData{}, false
	}
	observability.Cache().OnCacheHit(ctx, observability.KeyTypeGraph)
	return data, true
}

// Candidates returns the full candidate set of every filter dimension for
// mode under the current snapshot.
func (r *Runner) Candidates(ctx context.Context, mode graph.Mode) (filter.Candidates, error) {
	full, err := r.Graph(ctx, mode, filter.Selection{})
	if err != nil {
		return filter.Candidates{}, err
	}
	return process.CandidatesOf(full), nil
}

// Badges returns the extension types present in data under the current
// snapshot.
func (r *Runner) Badges(data graph.GraphData) graph.BadgeSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return process.BadgeTypes(r.snap, data)
}

// =============================================================================
// Layout
// =============================================================================

// ComputeLayout lays out data with caching and reports whether the layout
// came from the byte cache.
func (r *Runner) ComputeLayout(ctx context.Context, data graph.GraphData, opts Options) (graph.Layout, bool, error) {
	opts.SetLayoutDefaults()
	if data.Mode.IsValid() {
		opts.Mode = data.Mode
	}

	encoded, err := graph.MarshalGraph(data)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(encoded), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := graph.UnmarshalLayout(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, observability.KeyTypeLayout)
				return l, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KeyTypeLayout)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, string(opts.Mode), len(data.Nodes))
	l := layout.Build(data, opts.LayoutOptions()).Export(data)
	observability.Pipeline().OnLayoutComplete(ctx, string(opts.Mode), time.Since(start), nil)

	if out, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, out, r.ttl(TTLLayout)); err == nil {
			observability.Cache().OnCacheSet(ctx, observability.KeyTypeLayout, len(out))
		}
	}
	return l, false, nil
}

// =============================================================================
// Execute
// =============================================================================

// Execute runs the complete resolve → process → layout → render pipeline
// against the current snapshot.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Resolve and process
	processStart := time.Now()
	data, canonical, info, err := r.graph(ctx, opts.Mode, opts.Selection, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	result.Graph = data
	result.Selection = canonical
	result.CacheInfo = info
	result.Stats.ProcessTime = time.Since(processStart)
	result.Stats.NodeCount = len(data.Nodes)
	result.Stats.EdgeCount = len(data.Dependencies)

	if encoded, err := graph.MarshalGraph(data); err == nil {
		result.GraphHash = cache.Hash(encoded)
	}

	opts.Logger.Info("built graph",
		"mode", data.Mode,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", info.ResultHit || info.GraphHit,
		"duration", result.Stats.ProcessTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayout(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if data.Mode.IsAdded() {
		badges := r.Badges(data)
		l.Badges = &badges
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"width", l.Width,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, l, data, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ClearCache clears the result cache and, when supported, the byte cache.
// It returns the number of entries removed from each.
func (r *Runner) ClearCache(ctx context.Context) (results, stored int, err error) {
	r.mu.Lock()
	results = r.Results.Size()
	r.Results.Clear()
	r.mu.Unlock()
	observability.Cache().OnCacheClear(ctx, observability.KeyTypeResult, results)

	stored, err = cache.Clear(ctx, r.Cache)
	if err != nil {
		return results, stored, fmt.Errorf("clear byte cache: %w", err)
	}
	observability.Cache().OnCacheClear(ctx, observability.KeyTypeGraph, stored)
	return results, stored, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
