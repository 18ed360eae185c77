// Package ingest collects soil report PDFs and extracts them in batches.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soilextract/soilextract/internal/report"
)

// Extractor converts one document into a report.
// *pipeline.Pipeline implements it.
type Extractor interface {
	Extract(ctx context.Context, path string) (*report.SoilReport, error)
}

// Result is the outcome of extracting one file.
type Result struct {
	Path    string
	Report  *report.SoilReport
	Err     error
	Elapsed time.Duration
}

// Request contains the parameters for a batch extraction.
type Request struct {
	Paths   []string     // files or directories; directories contribute their *.pdf files
	Workers int          // concurrent extractions, defaults to 1
	Logger  *slog.Logger // Optional logger for progress updates
}

// Run extracts every PDF named by req.Paths. Results are returned in
// discovery order; one file failing does not stop the others.
func Run(ctx context.Context, ex Extractor, req Request) ([]Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	paths, err := Discover(req.Paths)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files found")
	}

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	log.Info("ingest.start", "files", len(paths), "workers", workers)

	results := make([]Result, len(paths))
	sem := make(chan struct{}, workers)
	done := make(chan struct{})

	for i, path := range paths {
		sem <- struct{}{} // acquire
		go func() {
			defer func() {
				<-sem // release
				done <- struct{}{}
			}()

			start := time.Now()
			r, err := ex.Extract(ctx, path)
			results[i] = Result{Path: path, Report: r, Err: err, Elapsed: time.Since(start)}
		}()
	}
	for range paths {
		<-done
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("ingest.done", "files", len(paths), "failed", failed)
	return results, nil
}

// Discover expands paths into PDF files. Directories are read one level
// deep and their files sorted by numeric suffix. Duplicates are dropped.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("PDF not found: %s", p)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && IsPDF(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		for _, f := range sortPDFsByNumber(found) {
			add(f)
		}
	}
	return out, nil
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

var numericSuffix = regexp.MustCompile(`(?i)-(\d+)\.pdf$`)

// sortPDFsByNumber sorts PDF paths by their numeric suffix.
// e.g., ["farm-2.pdf", "farm-1.pdf", "farm-10.pdf"] -> ["farm-1.pdf", "farm-2.pdf", "farm-10.pdf"]
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := numericSuffix.FindStringSubmatch(sorted[i])
		mj := numericSuffix.FindStringSubmatch(sorted[j])

		// If both have numbers, sort numerically
		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			if ni != nj {
				return ni < nj
			}
			return sorted[i] < sorted[j]
		}

		// Files without numbers come first
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}
