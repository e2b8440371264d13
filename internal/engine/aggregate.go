package engine

import (
	"fmt"
	"strings"

	"github.com/joshsymonds/batchmod/internal/gmail"
)

// Groups is the aggregator output: one mapping per mutation dimension.
// Label dimensions are keyed by label name; enum dimensions carry an entry
// for every variant, including the unset value the dispatcher must skip.
// Category reassignment is inherently per record, so those entries are kept
// as a flat list instead of a mapping.
type Groups[H comparable] struct {
	AddByLabel    map[string][]H
	RemoveByLabel map[string][]H
	Categorized   []Entry[H]
	ByMove        map[MoveState][]Entry[H]
	ByImportance  map[Importance][]H
	ByRead        map[ReadState][]Entry[H]
}

// Aggregate partitions a dataset along each mutation dimension in one pass.
// Grouping the same dataset twice yields identical mappings.
func Aggregate[H comparable](ds Dataset[H]) Groups[H] {
	g := Groups[H]{
		AddByLabel:    map[string][]H{},
		RemoveByLabel: map[string][]H{},
		ByMove:        map[MoveState][]Entry[H]{},
		ByImportance:  map[Importance][]H{},
		ByRead:        map[ReadState][]Entry[H]{},
	}
	for m := MoveUnset; m <= MoveRecordTrash; m++ {
		g.ByMove[m] = nil
	}
	for i := ImportanceUnset; i <= Unimportant; i++ {
		g.ByImportance[i] = nil
	}
	for r := ReadUnset; r <= RecordUnread; r++ {
		g.ByRead[r] = nil
	}

	for _, e := range ds {
		a := e.Action
		if a == nil {
			a = &Action{}
		}
		for _, name := range a.LabelsToAdd {
			g.AddByLabel[name] = append(g.AddByLabel[name], e.ID)
		}
		for _, name := range a.LabelsToRemove {
			g.RemoveByLabel[name] = append(g.RemoveByLabel[name], e.ID)
		}
		if len(a.Categories) > 0 {
			g.Categorized = append(g.Categorized, e)
		}
		g.ByMove[a.Move] = append(g.ByMove[a.Move], e)
		g.ByImportance[a.Importance] = append(g.ByImportance[a.Importance], e.ID)
		g.ByRead[a.Read] = append(g.ByRead[a.Read], e)
	}
	return g
}

// Validate rejects label names that would fail downstream, before any
// mutation for that dimension is issued.
func (g Groups[H]) Validate() error {
	for name := range g.AddByLabel {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("label-add group with empty name: %w", ErrMalformedInput)
		}
	}
	for name := range g.RemoveByLabel {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("label-remove group with empty name: %w", ErrMalformedInput)
		}
	}
	return nil
}

// threadIDs collects the parent threads of a group, deduplicated in
// first-seen order.
func threadIDs[H comparable](entries []Entry[H]) []gmail.ThreadID {
	seen := make(map[gmail.ThreadID]struct{}, len(entries))
	out := make([]gmail.ThreadID, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Thread]; ok {
			continue
		}
		seen[e.Thread] = struct{}{}
		out = append(out, e.Thread)
	}
	return out
}

func handles[H comparable](entries []Entry[H]) []H {
	out := make([]H, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
