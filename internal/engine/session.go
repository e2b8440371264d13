package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joshsymonds/batchmod/internal/gmail"
)

// ErrMalformedInput marks upstream contract violations: empty or invalid
// label names, unknown enum names at the plan boundary. The batch aborts
// before the affected dimension mutates anything.
var ErrMalformedInput = errors.New("malformed action input")

// LabelResolver resolves a label name to its mailbox handle, creating the
// label if it does not exist yet.
type LabelResolver interface {
	EnsureLabel(ctx context.Context, name string) (gmail.LabelID, error)
}

// Session carries per-invocation configuration and the label handle cache.
// Resolution is idempotent: the same name always yields the same handle for
// the lifetime of the session.
type Session struct {
	ProcessedLabel   string // empty: no processed marker is applied
	UnprocessedLabel string // removed from every record after a batch
	Cutoff           time.Time

	resolver LabelResolver
	labels   map[string]gmail.LabelID
}

// NewSession constructs a Session around a label resolver.
func NewSession(resolver LabelResolver, processed, unprocessed string, cutoff time.Time) *Session {
	return &Session{
		ProcessedLabel:   processed,
		UnprocessedLabel: unprocessed,
		Cutoff:           cutoff,
		resolver:         resolver,
		labels:           map[string]gmail.LabelID{},
	}
}

// Label resolves a label name through the session cache.
func (s *Session) Label(ctx context.Context, name string) (gmail.LabelID, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty label name: %w", ErrMalformedInput)
	}
	if id, ok := s.labels[name]; ok {
		return id, nil
	}
	id, err := s.resolver.EnsureLabel(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolve label %q: %w", name, err)
	}
	s.labels[name] = id
	return id, nil
}
