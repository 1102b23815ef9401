// Package config holds the run configuration. Values come from defaults,
// PDFX_-prefixed environment variables, and command-line flags bound by the
// command layer, in increasing precedence.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	// PDFPath is the input document. Set by the command layer from the
	// positional argument, not by viper.
	PDFPath string

	OutputDir string
	DPI       int
	Languages string

	// TessdataPrefix points the OCR engine at its trained model data.
	TessdataPrefix string
	// RendererBinary overrides the pdftoppm executable path.
	RendererBinary string

	Workers      int
	RetryFailed  bool
	NamesEnabled bool

	// StatusAddr, when non-empty, serves the progress endpoint on that
	// address for the duration of the run.
	StatusAddr string

	// Mode selects the task set without prompting: "all", "resume", or
	// "range". Empty means interactive selection.
	Mode      string
	PageRange string
}

// SetDefaults registers defaults with viper. Called by the command layer
// before flag binding so flags and env both override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output-dir", ".")
	v.SetDefault("dpi", 300)
	v.SetDefault("languages", "eng")
	v.SetDefault("tessdata-prefix", "")
	v.SetDefault("pdftoppm", "")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("retry-failed", false)
	v.SetDefault("names", true)
	v.SetDefault("status-addr", "")
	v.SetDefault("mode", "")
	v.SetDefault("range", "")
}

// Load materializes the configuration from viper.
func Load(v *viper.Viper) Config {
	cfg := Config{
		OutputDir:      v.GetString("output-dir"),
		DPI:            v.GetInt("dpi"),
		Languages:      v.GetString("languages"),
		TessdataPrefix: v.GetString("tessdata-prefix"),
		RendererBinary: v.GetString("pdftoppm"),
		Workers:        v.GetInt("workers"),
		RetryFailed:    v.GetBool("retry-failed"),
		NamesEnabled:   v.GetBool("names"),
		StatusAddr:     v.GetString("status-addr"),
		Mode:           v.GetString("mode"),
		PageRange:      v.GetString("range"),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg
}

func (c Config) Validate() error {
	if c.PDFPath == "" {
		return fmt.Errorf("input pdf path is required")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Languages == "" {
		return fmt.Errorf("languages must not be empty")
	}
	switch c.Mode {
	case "", "all", "resume", "range":
	default:
		return fmt.Errorf("mode must be one of all, resume, range; got %q", c.Mode)
	}
	if c.Mode == "range" && c.PageRange == "" {
		return fmt.Errorf("mode range requires --range start-end")
	}
	return nil
}
