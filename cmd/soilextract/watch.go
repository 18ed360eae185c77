package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/soilextract/soilextract/internal/config"
	"github.com/soilextract/soilextract/internal/ingest"
	"github.com/soilextract/soilextract/internal/output"
	"github.com/soilextract/soilextract/internal/pipeline"
	"github.com/soilextract/soilextract/internal/report"
	"github.com/soilextract/soilextract/internal/watch"
)

var (
	watchDebounce    time.Duration
	watchInitialScan bool
)

// swappableExtractor lets a config reload replace the pipeline between files.
type swappableExtractor struct {
	current atomic.Pointer[pipeline.Pipeline]
}

func (s *swappableExtractor) Extract(ctx context.Context, path string) (*report.SoilReport, error) {
	return s.current.Load().Extract(ctx, path)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract every PDF that appears in a directory",
	Long: `Watch monitors a directory and extracts each PDF written into it.
Reports are saved to the home reports directory, named after the PDF.

The config file is reloaded when it changes; the next file uses the new
settings.

Examples:
  soilextract watch ./inbox
  soilextract watch ./inbox --initial-scan -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, h, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		p, err := newPipeline(mgr.Get(), logger)
		if err != nil {
			return err
		}
		ex := &swappableExtractor{}
		ex.current.Store(p)

		mgr.OnChange(func(cfg *config.Config) {
			next, err := newPipeline(cfg, logger)
			if err != nil {
				logger.Warn("watch.reload_failed", "error", err)
				return
			}
			ex.current.Store(next)
			logger.Info("watch.pipeline_reloaded", "model", cfg.Model)
		})
		mgr.WatchConfig()

		format := output.GetFormat()
		w, err := watch.New(watch.Config{
			Dir:         args[0],
			Extractor:   ex,
			Debounce:    watchDebounce,
			InitialScan: watchInitialScan,
			Logger:      logger,
			Handle: func(r ingest.Result) {
				if r.Err != nil {
					logger.Error("watch.failed", "path", r.Path, "kind", pipeline.KindOf(r.Err), "error", r.Err)
					return
				}
				path := h.ReportPath(r.Path, string(format))
				if err := output.ToFile(path, format, r.Report); err != nil {
					logger.Error("watch.save_failed", "path", path, "error", err)
					return
				}
				logger.Info("watch.saved", "path", path, "report_number", r.Report.ReportNumber)
			},
		})
		if err != nil {
			return err
		}
		return w.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a new file is extracted")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "also extract PDFs already in the directory")

	rootCmd.AddCommand(watchCmd)
}
