// Package pipeline implements the resumable concurrent page-processing core:
// task partitioning, the bounded worker pool, checkpoint-driven resume, and
// the deterministic consolidation that follows the concurrent phase.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ddriverplays/pdf-extractor/internal/aggregate"
	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
	"github.com/ddriverplays/pdf-extractor/internal/config"
	"github.com/ddriverplays/pdf-extractor/internal/document"
	"github.com/ddriverplays/pdf-extractor/internal/names"
	"github.com/ddriverplays/pdf-extractor/internal/ocr"
	"github.com/ddriverplays/pdf-extractor/internal/report"
)

// ErrUserQuit signals that the operator chose to quit before any task was
// dispatched. The command layer maps it to its own exit code.
var ErrUserQuit = errors.New("canceled by operator")

// Source is the document handle the orchestrator needs: a path for naming
// the output tree and a page count for task partitioning. Satisfied by
// *document.Source.
type Source interface {
	Path() string
	PageCount() (int, error)
}

// Orchestrator wires checkpoint, selection, worker pool, aggregation, and
// reporting into one run.
type Orchestrator struct {
	cfg        config.Config
	log        *slog.Logger
	source     Source
	renderer   document.Renderer
	engine     ocr.Engine
	recognizer names.Recognizer // nil when the NER collaborator is absent
	selector   Selector

	layout checkpoint.Layout
	stats  *ocr.Stats
	run    *Run
}

func New(cfg config.Config, log *slog.Logger, source Source, renderer document.Renderer,
	engine ocr.Engine, recognizer names.Recognizer, selector Selector) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		log:        log,
		source:     source,
		renderer:   renderer,
		engine:     engine,
		recognizer: recognizer,
		selector:   selector,
		layout:     checkpoint.NewLayout(cfg.OutputDir, source.Path()),
		stats:      ocr.NewStats(time.Hour),
		run:        NewRun(source.Path(), 0),
	}
}

// Snapshot exposes run progress for the status endpoint.
func (o *Orchestrator) Snapshot() RunSnapshot { return o.run.Snapshot() }

// OCRStats exposes the rolling OCR latency aggregate.
func (o *Orchestrator) OCRStats() ocr.Snapshot { return o.stats.Snapshot() }

// Layout exposes the resolved output tree.
func (o *Orchestrator) Layout() checkpoint.Layout { return o.layout }

// Execute runs the full pipeline. Only checkpoint-scan and output-tree
// failures are fatal; per-page failures are recorded in their artifacts and
// the run continues.
func (o *Orchestrator) Execute(ctx context.Context) error {
	totalPages, err := o.source.PageCount()
	if err != nil {
		o.run.SetStatus(StatusFailed)
		return err
	}
	o.run.SetTotalPages(totalPages)

	if err := o.layout.EnsureDirs(); err != nil {
		o.run.SetStatus(StatusFailed)
		return err
	}

	o.run.SetStatus(StatusSelecting)
	state, err := checkpoint.ComputeState(o.layout, totalPages)
	if err != nil {
		o.run.SetStatus(StatusFailed)
		return err
	}
	o.log.Info("checkpoint state",
		"last_completed", state.LastCompleted,
		"recorded_failures", len(state.Failed),
		"total_pages", totalPages,
	)

	sel, err := o.selector.Choose(state, totalPages)
	if err != nil {
		o.run.SetStatus(StatusFailed)
		return err
	}
	if sel.Mode == ModeQuit {
		o.run.SetStatus(StatusQuit)
		return ErrUserQuit
	}

	tasks := o.buildTasks(sel, state)
	o.run.SetTotalTasks(len(tasks))
	o.log.Info("dispatching pages",
		"run_id", o.run.ID,
		"tasks", len(tasks),
		"start", sel.Start,
		"end", sel.End,
		"workers", o.cfg.Workers,
		"dpi", o.cfg.DPI,
		"languages", o.cfg.Languages,
		"engine", o.engine.Name(),
	)

	o.run.SetStatus(StatusProcessing)
	worker := NewWorker(o.renderer, o.engine, o.layout, o.stats, o.log)
	pool := NewPool(worker, o.cfg.Workers, o.log)
	pool.OnResult = o.run.RecordResult
	pool.Run(ctx, tasks)

	snap := o.run.Snapshot()
	o.log.Info("processing complete",
		"succeeded", snap.Progress.Succeeded,
		"failed", snap.Progress.Failed,
		"ocr", o.stats.Snapshot(),
	)
	if ctx.Err() != nil {
		o.run.SetStatus(StatusCanceled)
		return fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	if err := o.consolidate(totalPages); err != nil {
		o.run.SetStatus(StatusFailed)
		return err
	}

	o.run.SetStatus(StatusCompleted)
	return nil
}

// buildTasks materializes the page task set for a selection. When retrying
// recorded failures on resume, those pages are prepended so the set stays in
// ascending page order.
func (o *Orchestrator) buildTasks(sel Selection, state checkpoint.State) []PageTask {
	var pages []int
	if o.cfg.RetryFailed && sel.Mode == ModeResume {
		pages = append(pages, state.Failed...)
	}
	for page := sel.Start; page <= sel.End; page++ {
		pages = append(pages, page)
	}

	tasks := make([]PageTask, 0, len(pages))
	for _, page := range pages {
		tasks = append(tasks, PageTask{Page: page, DPI: o.cfg.DPI, Languages: o.cfg.Languages})
	}
	return tasks
}

// consolidate is the single-threaded reduce over persisted artifacts. It
// always covers the whole document, so reports are regenerated from current
// state and a resumed run converges to the same output as a single full run.
func (o *Orchestrator) consolidate(totalPages int) error {
	o.run.SetStatus(StatusConsolidating)

	res := aggregate.Consolidate(o.log, o.layout, 1, totalPages)
	o.log.Info("consolidated pages",
		"analyzed", res.PagesAnalyzed(),
		"skipped", len(res.Skipped),
		"total_words", res.TotalWords,
		"unique_words", len(res.Words),
	)

	if err := report.WriteCombined(o.layout.CombinedPath(), res.Combined); err != nil {
		return err
	}
	if err := report.WriteWordReport(o.layout.WordReportPath(), res); err != nil {
		return err
	}

	if o.recognizer == nil {
		o.log.Warn("name recognition unavailable, skipping proper names report")
		// Drop any report left over from an earlier run so outputs never go
		// stale relative to the current configuration.
		if err := os.Remove(o.layout.NameReportPath()); err != nil && !os.IsNotExist(err) {
			o.log.Warn("could not remove stale name report", "error", err)
		}
		return nil
	}

	idx := names.Extract(o.log, o.recognizer, o.layout, 1, totalPages)
	o.log.Info("extracted names", "unique_names", idx.Len())
	return report.WriteNameReport(o.layout.NameReportPath(), idx)
}
