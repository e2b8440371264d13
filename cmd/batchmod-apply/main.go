package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joshsymonds/batchmod/internal/engine"
	"github.com/joshsymonds/batchmod/internal/plan"
	"github.com/joshsymonds/batchmod/internal/rate"
	"github.com/joshsymonds/batchmod/internal/report"
	"github.com/joshsymonds/batchmod/internal/runtime"
)

type applyConfig struct {
	cfgDir      string
	decisions   string
	processed   string
	unprocessed string
	cutoff      string
	jsonOut     string
	rps         int
	burst       int
	dryRun      bool
}

func main() {
	cfg := parseApplyFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("batchmod-apply failed", "error", err)
		os.Exit(1)
	}
}

func parseApplyFlags() applyConfig {
	cfgDir := flag.String("config", os.ExpandEnv("$HOME/.gmailctl"), "gmailctl auth directory")
	decisions := flag.String("decisions", "decisions.json", "decisions file from the rule stage")
	processed := flag.String("processed-label", "batchmod/processed", "label marking processed records (empty: none)")
	unprocessed := flag.String("unprocessed-label", "batchmod/pending", "label removed from every processed record")
	cutoff := flag.String("cutoff", "", "RFC3339 cutoff; skip decisions made after it (empty: none)")
	jsonOut := flag.String("report", "", "write JSON run report to path")
	rps := flag.Int("rps", 4, "max requests per second")
	burst := flag.Int("burst", 4, "rate limiter burst size")
	dryRun := flag.Bool("dry-run", false, "log only; skip modifications")
	flag.Parse()

	return applyConfig{
		cfgDir:      *cfgDir,
		decisions:   *decisions,
		processed:   *processed,
		unprocessed: *unprocessed,
		cutoff:      *cutoff,
		jsonOut:     *jsonOut,
		rps:         *rps,
		burst:       *burst,
		dryRun:      *dryRun,
	}
}

func run(cfg applyConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger()
	runID := uuid.NewString()
	logger.InfoContext(ctx, "starting apply run", "run_id", runID, "dry_run", cfg.dryRun)

	cutoff, err := parseCutoff(cfg.cutoff)
	if err != nil {
		return err
	}
	p, err := plan.Load(cfg.decisions, cutoff)
	if err != nil {
		return fmt.Errorf("load decisions: %w", err)
	}

	svc, err := runtime.NewGmailService(ctx, cfg.cfgDir, runtime.ScopeModify)
	if err != nil {
		return fmt.Errorf("create gmail service: %w", err)
	}

	var limiter rate.Limiter
	if cfg.rps > 0 {
		bucket := rate.NewTokenBucket(cfg.rps, cfg.burst)
		limiter = bucket
		defer bucket.Stop()
	}
	labels := runtime.NewLabelClient(svc, limiter)

	rep := report.Report{
		RunID:       runID,
		GeneratedAt: time.Now(),
		DryRun:      cfg.dryRun,
		Skipped:     p.Skipped,
	}

	threadEngine := engine.NewEngine(
		runtime.NewThreadMailbox(svc, limiter),
		engine.NewSession(labels, cfg.processed, cfg.unprocessed, cutoff),
		logger, "thread")
	threadEngine.DryRun = cfg.dryRun
	if rep.Threads, err = threadEngine.Apply(ctx, p.Threads); err != nil {
		return fmt.Errorf("apply thread batch: %w", err)
	}

	messageEngine := engine.NewEngine(
		runtime.NewMessageMailbox(svc, limiter),
		engine.NewSession(labels, cfg.processed, cfg.unprocessed, cutoff),
		logger, "message")
	messageEngine.DryRun = cfg.dryRun
	if rep.Messages, err = messageEngine.Apply(ctx, p.Messages); err != nil {
		return fmt.Errorf("apply message batch: %w", err)
	}

	if printErr := report.PrintHuman(rep, os.Stdout); printErr != nil {
		return fmt.Errorf("print report: %w", printErr)
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
