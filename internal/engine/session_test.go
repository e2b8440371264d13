package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionLabelCaching(t *testing.T) {
	resolver := &fakeResolver{}
	s := NewSession(resolver, "", "", time.Time{})

	first, err := s.Label(context.Background(), "alerts")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	second, err := s.Label(context.Background(), "alerts")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if first != second {
		t.Fatalf("handles differ: %s vs %s", first, second)
	}
	if len(resolver.ensured) != 1 {
		t.Fatalf("expected a single resolver call, got %d", len(resolver.ensured))
	}
}

func TestSessionRejectsEmptyName(t *testing.T) {
	s := NewSession(&fakeResolver{}, "", "", time.Time{})
	if _, err := s.Label(context.Background(), "  "); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (string, error)
		input   string
		want    string
		wantErr bool
	}{
		{name: "move-unset", parse: parseMove, input: "", want: ""},
		{name: "move-archive", parse: parseMove, input: "archive", want: "archive"},
		{name: "move-record", parse: parseMove, input: "record_trash", want: "record_trash"},
		{name: "move-bad", parse: parseMove, input: "shred", wantErr: true},
		{name: "importance", parse: parseImp, input: "unimportant", want: "unimportant"},
		{name: "importance-bad", parse: parseImp, input: "starred", wantErr: true},
		{name: "read-thread", parse: parseRead, input: "thread_unread", want: "thread_unread"},
		{name: "read-bad", parse: parseRead, input: "seen", wantErr: true},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.parse(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func parseMove(s string) (string, error) {
	m, err := ParseMoveState(s)
	return m.String(), err
}

func parseImp(s string) (string, error) {
	i, err := ParseImportance(s)
	return i.String(), err
}

func parseRead(s string) (string, error) {
	r, err := ParseReadState(s)
	return r.String(), err
}
