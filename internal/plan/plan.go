// Package plan loads the decisions file the rule stage hands off: one JSON
// document per run, holding the intended mutation for every candidate
// thread and message. Loading is strict: unknown enum or category names
// fail here, before any mailbox work starts.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joshsymonds/batchmod/internal/engine"
	"github.com/joshsymonds/batchmod/internal/gmail"
)

// Decision is one record's entry in the decisions file. Enum fields are
// string-encoded; the empty string means no action on that dimension.
type Decision struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"thread_id,omitempty"` // messages only
	Subject      string    `json:"subject,omitempty"`
	AddLabels    []string  `json:"add_labels,omitempty"`
	RemoveLabels []string  `json:"remove_labels,omitempty"`
	Categories   []string  `json:"categories,omitempty"`
	Move         string    `json:"move,omitempty"`
	Importance   string    `json:"importance,omitempty"`
	Read         string    `json:"read,omitempty"`
	DecidedAt    time.Time `json:"decided_at,omitempty"`
}

type document struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Threads     []Decision `json:"threads"`
	Messages    []Decision `json:"messages"`
}

// Plan is a loaded decisions file, converted into engine datasets.
type Plan struct {
	GeneratedAt time.Time
	Threads     engine.Dataset[gmail.ThreadID]
	Messages    engine.Dataset[gmail.MessageID]
	Skipped     int // decisions stamped after the cutoff
}

// Load reads and validates a decisions file. Decisions stamped after the
// cutoff belong to the next run and are skipped; a zero cutoff disables the
// check.
func Load(path string, cutoff time.Time) (Plan, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path comes from a user flag
	if err != nil {
		return Plan{}, fmt.Errorf("read decisions file: %w", err)
	}
	var doc document
	if decodeErr := json.Unmarshal(raw, &doc); decodeErr != nil {
		return Plan{}, fmt.Errorf("decode decisions file: %w", decodeErr)
	}
	if len(doc.Threads) == 0 && len(doc.Messages) == 0 {
		return Plan{}, errors.New("decisions file holds no decisions")
	}

	p := Plan{GeneratedAt: doc.GeneratedAt}
	for _, d := range doc.Threads {
		if stale(d, cutoff) {
			p.Skipped++
			continue
		}
		if d.ID == "" {
			return Plan{}, fmt.Errorf("thread decision without id: %w", engine.ErrMalformedInput)
		}
		act, actErr := action(d)
		if actErr != nil {
			return Plan{}, fmt.Errorf("thread decision %q: %v: %w", d.ID, actErr, engine.ErrMalformedInput)
		}
		p.Threads = append(p.Threads, engine.Entry[gmail.ThreadID]{
			ID:      gmail.ThreadID(d.ID),
			Thread:  gmail.ThreadID(d.ID),
			Subject: d.Subject,
			Action:  act,
		})
	}
	for _, d := range doc.Messages {
		if stale(d, cutoff) {
			p.Skipped++
			continue
		}
		if d.ID == "" {
			return Plan{}, fmt.Errorf("message decision without id: %w", engine.ErrMalformedInput)
		}
		if d.ThreadID == "" {
			return Plan{}, fmt.Errorf("message decision %q without thread id: %w", d.ID, engine.ErrMalformedInput)
		}
		act, actErr := action(d)
		if actErr != nil {
			return Plan{}, fmt.Errorf("message decision %q: %v: %w", d.ID, actErr, engine.ErrMalformedInput)
		}
		p.Messages = append(p.Messages, engine.Entry[gmail.MessageID]{
			ID:      gmail.MessageID(d.ID),
			Thread:  gmail.ThreadID(d.ThreadID),
			Subject: d.Subject,
			Action:  act,
		})
	}
	return p, nil
}

func stale(d Decision, cutoff time.Time) bool {
	return !cutoff.IsZero() && !d.DecidedAt.IsZero() && d.DecidedAt.After(cutoff)
}

func action(d Decision) (*engine.Action, error) {
	act := &engine.Action{
		LabelsToAdd:    d.AddLabels,
		LabelsToRemove: d.RemoveLabels,
	}
	for _, raw := range d.Categories {
		cat, err := gmail.ParseCategory(raw)
		if err != nil {
			return nil, err
		}
		act.Categories = append(act.Categories, cat)
	}
	var err error
	if act.Move, err = engine.ParseMoveState(d.Move); err != nil {
		return nil, err
	}
	if act.Importance, err = engine.ParseImportance(d.Importance); err != nil {
		return nil, err
	}
	if act.Read, err = engine.ParseReadState(d.Read); err != nil {
		return nil, err
	}
	return act, nil
}
