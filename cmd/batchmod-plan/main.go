package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joshsymonds/batchmod/internal/engine"
	"github.com/joshsymonds/batchmod/internal/plan"
	"github.com/joshsymonds/batchmod/internal/report"
	"github.com/joshsymonds/batchmod/internal/runtime"
)

type planConfig struct {
	decisions   string
	processed   string
	unprocessed string
	cutoff      string
	jsonOut     string
}

func main() {
	cfg := parsePlanFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("batchmod-plan failed", "error", err)
		os.Exit(1)
	}
}

func parsePlanFlags() planConfig {
	decisions := flag.String("decisions", "decisions.json", "decisions file from the rule stage")
	processed := flag.String("processed-label", "batchmod/processed", "label marking processed records (empty: none)")
	unprocessed := flag.String("unprocessed-label", "batchmod/pending", "label removed from every processed record")
	cutoff := flag.String("cutoff", "", "RFC3339 cutoff; skip decisions made after it (empty: none)")
	jsonOut := flag.String("json", "", "write JSON summary to path")
	flag.Parse()

	return planConfig{
		decisions:   *decisions,
		processed:   *processed,
		unprocessed: *unprocessed,
		cutoff:      *cutoff,
		jsonOut:     *jsonOut,
	}
}

// run validates the decisions file and reports the calls an apply run would
// issue, without talking to Gmail at all.
func run(cfg planConfig) error {
	cutoff, err := parseCutoff(cfg.cutoff)
	if err != nil {
		return err
	}
	p, err := plan.Load(cfg.decisions, cutoff)
	if err != nil {
		return fmt.Errorf("load decisions: %w", err)
	}

	session := engine.NewSession(nil, cfg.processed, cfg.unprocessed, cutoff)
	rep := report.Report{
		RunID:       "plan",
		GeneratedAt: time.Now(),
		DryRun:      true,
		Skipped:     p.Skipped,
	}
	if rep.Threads, err = engine.PlanStats(p.Threads, session); err != nil {
		return fmt.Errorf("plan thread batch: %w", err)
	}
	if rep.Messages, err = engine.PlanStats(p.Messages, session); err != nil {
		return fmt.Errorf("plan message batch: %w", err)
	}

	if printErr := report.PrintHuman(rep, os.Stdout); printErr != nil {
		return fmt.Errorf("print summary: %w", printErr)
	}
	if cfg.jsonOut == "" {
		return nil
	}
	if writeErr := report.WriteJSON(rep, cfg.jsonOut); writeErr != nil {
		return fmt.Errorf("write json: %w", writeErr)
	}
	return nil
}

func parseCutoff(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cutoff: %w", err)
	}
	return t, nil
}
