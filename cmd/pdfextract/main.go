// Command pdfextract converts a scanned PDF into searchable text: it renders
// each page to PNG, runs OCR over it, and consolidates the results into a
// combined text file plus word-frequency and person-name reports. Per-page
// artifacts double as checkpoints, so an interrupted run resumes without
// redoing completed pages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ddriverplays/pdf-extractor/internal/config"
	"github.com/ddriverplays/pdf-extractor/internal/document"
	"github.com/ddriverplays/pdf-extractor/internal/names"
	"github.com/ddriverplays/pdf-extractor/internal/ocr"
	"github.com/ddriverplays/pdf-extractor/internal/pipeline"
	"github.com/ddriverplays/pdf-extractor/internal/status"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, pipeline.ErrUserQuit) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("PDFX")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pdfextract <pdf>",
		Short:         "Concurrent PDF to PNG and OCR text extractor with resume support",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			cfg.PDFPath = args[0]
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("output-dir", "o", ".", "base directory for the output tree")
	flags.Int("dpi", 300, "rendering resolution (higher is better OCR, slower)")
	flags.String("languages", "eng", "OCR language spec, '+' to combine (e.g. eng+deu)")
	flags.String("tessdata-prefix", "", "path to Tesseract trained model data")
	flags.String("pdftoppm", "", "path to the pdftoppm executable")
	flags.Int("workers", 0, "concurrent page executors (0 = number of CPUs)")
	flags.Bool("retry-failed", false, "re-queue pages recorded as failed when resuming")
	flags.Bool("names", true, "extract person names into proper_names_report.csv")
	flags.String("status-addr", "", "serve run progress over HTTP on this address")
	flags.String("mode", "", "non-interactive selection: all, resume, or range")
	flags.String("range", "", "page range for --mode range, e.g. 5-10")

	cobra.CheckErr(v.BindPFlags(flags))
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := document.Open(cfg.PDFPath)
	if err != nil {
		log.Error("cannot open input", "error", err)
		return err
	}

	renderer, err := document.NewPdftoppmRenderer(source.Path(), cfg.RendererBinary)
	if err != nil {
		log.Error("page renderer unavailable", "error", err)
		return err
	}

	engine, err := ocr.NewTesseract(cfg.TessdataPrefix, cfg.Languages)
	if err != nil {
		log.Error("ocr engine unavailable", "error", err)
		return err
	}

	// Name recognition is a soft dependency: a missing model degrades the
	// run to word reports only.
	var recognizer names.Recognizer
	if cfg.NamesEnabled {
		rec, err := names.NewProseRecognizer()
		if err != nil {
			log.Warn("name recognition disabled", "error", err)
		} else {
			recognizer = rec
		}
	} else {
		log.Info("name recognition disabled by configuration")
	}

	var selector pipeline.Selector
	if cfg.Mode != "" {
		selector = pipeline.StaticSelector{ModeFlag: cfg.Mode, PageRange: cfg.PageRange}
	} else {
		selector = pipeline.NewPrompter(os.Stdin, os.Stderr)
	}

	orch := pipeline.New(cfg, log, source, renderer, engine, recognizer, selector)

	var statusSrv *http.Server
	if cfg.StatusAddr != "" {
		statusSrv = &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      status.NewServer(orch, log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("serving status", "addr", cfg.StatusAddr)
			if err := statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("status server error", "error", err)
			}
		}()
	}

	err = orch.Execute(ctx)

	if statusSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = statusSrv.Shutdown(shutdownCtx)
	}

	switch {
	case errors.Is(err, pipeline.ErrUserQuit):
		log.Info("exiting at operator request")
		return err
	case err != nil:
		log.Error("run failed", "error", err)
		return err
	}

	log.Info("run complete", "output", orch.Layout().Root)
	return nil
}
