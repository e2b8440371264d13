// Package report renders the outcome of one apply run for humans and for
// machine consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joshsymonds/batchmod/internal/engine"
)

// Report summarizes one batchmod run.
type Report struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	DryRun      bool         `json:"dry_run"`
	Skipped     int          `json:"skipped_decisions"`
	Threads     engine.Stats `json:"threads"`
	Messages    engine.Stats `json:"messages"`
}

// PrintHuman writes a readable summary to the provided writer.
func PrintHuman(rep Report, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	var builder strings.Builder
	mode := "applied"
	if rep.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(&builder, "batchmod %s — run %s\n", mode, rep.RunID)
	writeStats(&builder, "threads", rep.Threads)
	writeStats(&builder, "messages", rep.Messages)
	if rep.Skipped > 0 {
		fmt.Fprintf(&builder, "\n%d decisions skipped by cutoff\n", rep.Skipped)
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write human report: %w", err)
	}
	return nil
}

func writeStats(builder *strings.Builder, kind string, st engine.Stats) {
	fmt.Fprintf(builder, "\n%s: %d records, %d calls\n", kind, st.Records, st.Calls())
	if st.Calls() == 0 {
		return
	}
	rows := []struct {
		name  string
		count int
	}{
		{"label adds", st.LabelAddCalls},
		{"label removes", st.LabelRemoveCalls},
		{"category reassignments", st.CategoryCalls},
		{"moves", st.MoveCalls},
		{"importance", st.ImportanceCalls},
		{"read state", st.ReadCalls},
		{"bookkeeping", st.BookkeepingCalls},
	}
	for _, row := range rows {
		if row.count == 0 {
			continue
		}
		fmt.Fprintf(builder, "  %-24s %4d\n", row.name, row.count)
	}
}

// WriteJSON serializes the report to disk. The path is confined to the
// working directory.
func WriteJSON(rep Report, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if strings.HasPrefix(clean, "..") {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if encodeErr := enc.Encode(rep); encodeErr != nil {
		return fmt.Errorf("encode report: %w", encodeErr)
	}
	return nil
}
