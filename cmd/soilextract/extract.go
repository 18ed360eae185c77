package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soilextract/soilextract/internal/ingest"
	"github.com/soilextract/soilextract/internal/output"
	"github.com/soilextract/soilextract/internal/pipeline"
	"github.com/soilextract/soilextract/internal/report"
)

var (
	extractJobs int
	extractSave bool
)

// batchEntry is one file's outcome in multi-file output.
type batchEntry struct {
	Path   string             `json:"path" yaml:"path"`
	Report *report.SoilReport `json:"report,omitempty" yaml:"report,omitempty"`
	Kind   pipeline.Kind      `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error  string             `json:"error,omitempty" yaml:"error,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf|dir>...",
	Short: "Extract soil reports from PDF files",
	Long: `Extract renders each PDF, sends its pages to the configured model and
prints the validated report.

Directories contribute the PDF files directly inside them. With a single
file the report is printed on its own; with several, each entry carries its
path and either the report or the error kind.

Examples:
  soilextract extract report.pdf
  soilextract extract -o json scans/ --jobs 4
  soilextract extract report.pdf --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, h, logger, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newPipeline(mgr.Get(), logger)
		if err != nil {
			return err
		}

		results, err := ingest.Run(cmd.Context(), p, ingest.Request{
			Paths:   args,
			Workers: extractJobs,
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		if extractSave {
			if err := h.EnsureExists(); err != nil {
				return err
			}
		}

		failed := 0
		entries := make([]batchEntry, 0, len(results))
		for _, r := range results {
			entry := batchEntry{Path: r.Path, Report: r.Report}
			if r.Err != nil {
				failed++
				entry.Kind = pipeline.KindOf(r.Err)
				entry.Error = r.Err.Error()
				fmt.Fprintf(os.Stderr, "error kind=%s: %v\n", entry.Kind, r.Err)
			} else if extractSave {
				format := output.GetFormat()
				path := h.ReportPath(r.Path, string(format))
				if err := output.ToFile(path, format, r.Report); err != nil {
					return err
				}
				logger.Info("extract.saved", "path", path)
			}
			entries = append(entries, entry)
		}

		if len(entries) == 1 {
			if entries[0].Report != nil {
				if err := output.Write(entries[0].Report); err != nil {
					return err
				}
			}
		} else if err := output.Write(entries); err != nil {
			return err
		}

		if failed > 0 {
			return errors.New("extraction failed")
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVarP(&extractJobs, "jobs", "j", 1, "files to extract concurrently")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "also write each report to the home reports directory")

	rootCmd.AddCommand(extractCmd)
}
