// Package filter resolves raw filter selections into effective inclusion
// sets.
//
// Every filter dimension follows one rule: an empty selection, or a
// selection equal to the full candidate set, means "no filter". Selecting
// everything is therefore indistinguishable from selecting nothing, which
// keeps filter state from growing with the candidate list and makes a fresh
// view identical to one where every item is ticked.
package filter

import (
	"slices"
)

// Set is an effective filter for one dimension. The zero value matches
// everything.
type Set struct {
	ids map[string]struct{}
}

// All returns the unfiltered set.
func All() Set { return Set{} }

// Only returns a set matching exactly the given ids. An empty list yields
// the unfiltered set.
func Only(ids ...string) Set {
	ids = Dedupe(ids)
	if len(ids) == 0 {
		return Set{}
	}
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return Set{ids: m}
}

// Resolve turns a raw selection into an effective filter. The selection is
// deduplicated and compared with the deduplicated candidates as sets; when
// it is empty or selects every candidate, the unfiltered set is returned.
// Selected ids unknown to the candidates stay in the set and match nothing.
func Resolve(selected, candidates []string) Set {
	sel := Dedupe(selected)
	if len(sel) == 0 {
		return Set{}
	}
	if cands := Dedupe(candidates); len(cands) > 0 && slices.Equal(sel, cands) {
		return Set{}
	}
	return Only(sel...)
}

// All reports whether the set is unfiltered.
func (s Set) All() bool { return s.ids == nil }

// Match reports whether id passes the filter.
func (s Set) Match(id string) bool {
	if s.ids == nil {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids, sorted. Nil for the unfiltered set.
func (s Set) IDs() []string {
	if s.ids == nil {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of selected ids, 0 for the unfiltered set.
func (s Set) Len() int { return len(s.ids) }

// Dedupe returns the distinct non-empty ids of ids, sorted.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Toggle adds id to list when absent and removes it when present. Used by
// the "filter by / remove filter" actions on a single node.
func Toggle(list []string, id string) []string {
	if id == "" {
		return slices.Clone(list)
	}
	if slices.Contains(list, id) {
		return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == id })
	}
	return append(slices.Clone(list), id)
}
