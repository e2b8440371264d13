package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshsymonds/batchmod/internal/engine"
	"github.com/joshsymonds/batchmod/internal/gmail"
)

func writeDecisions(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decisions.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write decisions: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeDecisions(t, `{
		"generated_at": "2026-08-01T10:00:00Z",
		"threads": [
			{"id": "th1", "subject": "weekly digest", "add_labels": ["news"], "move": "archive", "read": "thread_read"}
		],
		"messages": [
			{"id": "m1", "thread_id": "th1", "remove_labels": ["todo"], "categories": ["updates"], "importance": "unimportant"}
		]
	}`)

	p, err := Load(path, time.Time{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.Threads) != 1 || len(p.Messages) != 1 {
		t.Fatalf("unexpected datasets: %d threads, %d messages", len(p.Threads), len(p.Messages))
	}
	th := p.Threads[0]
	if th.ID != gmail.ThreadID("th1") || th.Thread != gmail.ThreadID("th1") {
		t.Fatalf("thread entry wrong: %+v", th)
	}
	if th.Action.Move != engine.MoveArchive || th.Action.Read != engine.ThreadRead {
		t.Fatalf("thread action wrong: %+v", th.Action)
	}
	msg := p.Messages[0]
	if msg.Thread != gmail.ThreadID("th1") {
		t.Fatalf("message parent thread wrong: %+v", msg)
	}
	if msg.Action.Importance != engine.Unimportant || len(msg.Action.Categories) != 1 {
		t.Fatalf("message action wrong: %+v", msg.Action)
	}
}

func TestLoadRejectsUnknownEnum(t *testing.T) {
	path := writeDecisions(t, `{"threads": [{"id": "th1", "move": "shred"}]}`)
	if _, err := Load(path, time.Time{}); !errors.Is(err, engine.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	path := writeDecisions(t, `{"threads": [{"id": "th1", "categories": ["spam"]}]}`)
	if _, err := Load(path, time.Time{}); !errors.Is(err, engine.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestLoadRequiresIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "thread-without-id", body: `{"threads": [{"move": "archive"}]}`},
		{name: "message-without-thread", body: `{"messages": [{"id": "m1", "move": "record_trash"}]}`},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			path := writeDecisions(t, tc.body)
			if _, err := Load(path, time.Time{}); !errors.Is(err, engine.ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
		})
	}
}

func TestLoadRejectsEmptyDocument(t *testing.T) {
	path := writeDecisions(t, `{"threads": [], "messages": []}`)
	if _, err := Load(path, time.Time{}); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestLoadCutoffSkipsLateDecisions(t *testing.T) {
	path := writeDecisions(t, `{
		"threads": [
			{"id": "th1", "move": "archive", "decided_at": "2026-08-01T09:00:00Z"},
			{"id": "th2", "move": "archive", "decided_at": "2026-08-01T11:00:00Z"}
		]
	}`)
	cutoff := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	p, err := Load(path, cutoff)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.Threads) != 1 || p.Threads[0].ID != gmail.ThreadID("th1") {
		t.Fatalf("cutoff not applied: %+v", p.Threads)
	}
	if p.Skipped != 1 {
		t.Fatalf("expected 1 skipped decision, got %d", p.Skipped)
	}
}
