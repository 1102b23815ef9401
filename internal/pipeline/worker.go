package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
	"github.com/ddriverplays/pdf-extractor/internal/document"
	"github.com/ddriverplays/pdf-extractor/internal/ocr"
)

// ocrAttempts bounds retries of the render+recognize sequence for one page.
const ocrAttempts = 3

// Worker processes single page tasks: render the page, recognize its text,
// persist the per-page artifacts. Each pool executor owns one Worker; the
// only state shared between executors is the latency stats sink.
type Worker struct {
	renderer document.Renderer
	engine   ocr.Engine
	layout   checkpoint.Layout
	stats    *ocr.Stats
	log      *slog.Logger
}

func NewWorker(renderer document.Renderer, engine ocr.Engine, layout checkpoint.Layout, stats *ocr.Stats, log *slog.Logger) *Worker {
	return &Worker{
		renderer: renderer,
		engine:   engine,
		layout:   layout,
		stats:    stats,
		log:      log,
	}
}

// Process runs one page end to end and returns its result. On failure the
// artifact records the failure marker so the checkpoint stays contiguous —
// unless the context was canceled, in which case nothing is written and the
// page remains incomplete for the next run to pick up.
func (w *Worker) Process(ctx context.Context, task PageTask) PageResult {
	log := w.log.With("page", task.Page)

	var text string
	var ocrMillis int64
	err := retry.Do(
		func() error {
			image, err := w.renderer.Render(ctx, task.Page, task.DPI)
			if err != nil {
				return err
			}
			if err := os.WriteFile(w.layout.ImagePath(task.Page), image, 0o644); err != nil {
				return fmt.Errorf("write page image: %w", err)
			}

			start := time.Now()
			text, err = w.engine.Recognize(ctx, task.Page, image, task.Languages)
			ocrMillis = time.Since(start).Milliseconds()
			if err != nil {
				return err
			}
			w.stats.Record(time.Since(start))
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(ocrAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn("retrying page", "attempt", attempt+1, "error", err)
		}),
	)

	if err != nil {
		if ctx.Err() != nil {
			log.Info("page abandoned by cancellation")
			return PageResult{Page: task.Page, Status: ResultFailed, Err: ctx.Err().Error()}
		}
		if persistErr := w.persistFailure(task.Page, err); persistErr != nil {
			log.Error("failed to record page failure", "error", persistErr)
		}
		log.Error("page failed", "error", err)
		return PageResult{Page: task.Page, Status: ResultFailed, Err: err.Error(), OCRMillis: ocrMillis}
	}

	if err := w.persistText(task.Page, text); err != nil {
		log.Error("failed to persist page text", "error", err)
		return PageResult{Page: task.Page, Status: ResultFailed, Err: err.Error(), OCRMillis: ocrMillis}
	}
	log.Info("page processed", "ocr_ms", ocrMillis)
	return PageResult{Page: task.Page, Status: ResultSuccess, Text: text, OCRMillis: ocrMillis}
}

func (w *Worker) persistText(page int, text string) error {
	// A blank page still needs a non-empty artifact or the resume scan would
	// treat it as unprocessed.
	if text == "" {
		text = "\n"
	}
	if err := os.WriteFile(w.layout.TextPath(page), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write page text: %w", err)
	}
	return nil
}

func (w *Worker) persistFailure(page int, cause error) error {
	content := fmt.Sprintf("%s FOR THIS PAGE: %s", checkpoint.FailureMarker, cause)
	if err := os.WriteFile(w.layout.TextPath(page), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write failure artifact: %w", err)
	}
	return nil
}
