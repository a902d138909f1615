// Package condense owns the parent-tag bookkeeping between transcript entries
// and the derived summaries / truncation markers that condensed or hid them.
package condense

import "github.com/hupe1980/rewindmesh/core"

// liveIDs returns the condense ids of the summaries and the truncation ids of
// the truncation markers present in entries.
func liveIDs(entries []*core.Entry) (summaries, markers map[string]struct{}) {
	summaries = map[string]struct{}{}
	markers = map[string]struct{}{}
	for _, e := range entries {
		switch d := e.Derived.(type) {
		case core.Summary:
			if d.CondenseID != "" {
				summaries[d.CondenseID] = struct{}{}
			}
		case core.TruncationMarker:
			if d.TruncationID != "" {
				markers[d.TruncationID] = struct{}{}
			}
		}
	}
	return summaries, markers
}

// CleanupAfterTruncation clears CondenseParent and TruncationParent tags that
// point at summaries or truncation markers no longer present in entries.
//
// Repaired entries are replaced by copies; all other entries keep their
// pointer and order. When nothing needs repair the input slice is returned
// as is. Applying it twice yields the same sequence.
func CleanupAfterTruncation(entries []*core.Entry) []*core.Entry {
	summaries, markers := liveIDs(entries)

	var out []*core.Entry
	for i, e := range entries {
		fixed := e
		if fixed.CondenseParent != "" {
			if _, ok := summaries[fixed.CondenseParent]; !ok {
				fixed = fixed.WithoutCondenseParent()
			}
		}
		if fixed.TruncationParent != "" {
			if _, ok := markers[fixed.TruncationParent]; !ok {
				fixed = fixed.WithoutTruncationParent()
			}
		}
		if fixed != e && out == nil {
			out = make([]*core.Entry, i, len(entries))
			copy(out, entries[:i])
		}
		if out != nil {
			out = append(out, fixed)
		}
	}
	if out == nil {
		return entries
	}
	return out
}

// EffectiveHistory returns the entries the model actually sees: entries
// condensed into a live summary or hidden behind a live truncation marker are
// left out. Tags naming missing summaries or markers do not hide anything.
func EffectiveHistory(entries []*core.Entry) []*core.Entry {
	summaries, markers := liveIDs(entries)
	out := make([]*core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.CondenseParent != "" {
			if _, ok := summaries[e.CondenseParent]; ok {
				continue
			}
		}
		if e.TruncationParent != "" {
			if _, ok := markers[e.TruncationParent]; ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
