package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joshsymonds/batchmod/internal/engine"
)

func sampleReport() Report {
	return Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
		Threads:     engine.Stats{Records: 4, LabelAddCalls: 2, MoveCalls: 1},
		Messages:    engine.Stats{Records: 2, ReadCalls: 1},
		Skipped:     3,
	}
}

func TestPrintHuman(t *testing.T) {
	var builder strings.Builder
	if err := PrintHuman(sampleReport(), &builder); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := builder.String()
	for _, want := range []string{
		"batchmod applied — run run-1",
		"threads: 4 records, 3 calls",
		"messages: 2 records, 1 calls",
		"label adds",
		"3 decisions skipped by cutoff",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintHumanDryRun(t *testing.T) {
	rep := sampleReport()
	rep.DryRun = true
	var builder strings.Builder
	if err := PrintHuman(rep, &builder); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if !strings.Contains(builder.String(), "batchmod dry-run") {
		t.Fatalf("dry-run not surfaced:\n%s", builder.String())
	}
}

func TestWriteJSONRejectsEscapingPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: "  "},
		{name: "absolute", path: "/tmp/report.json"},
		{name: "escape", path: "../report.json"},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			if err := WriteJSON(sampleReport(), tc.path); err == nil {
				t.Fatalf("expected error for path %q", tc.path)
			}
		})
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := WriteJSON(sampleReport(), "out.json"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	raw, err := os.ReadFile("out.json")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got Report
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Threads.LabelAddCalls != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
