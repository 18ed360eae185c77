// Package watch extracts soil report PDFs as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/soilextract/soilextract/internal/ingest"
)

// DefaultDebounce is how long a file must be quiet before it is extracted.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Dir         string
	Extractor   ingest.Extractor
	Handle      func(ingest.Result) // called once per extracted file
	Debounce    time.Duration
	InitialScan bool // extract PDFs already in Dir at startup
	Logger      *slog.Logger
}

// Watcher extracts every PDF created or rewritten in a directory.
// Extractions run one at a time in arrival order.
type Watcher struct {
	dir         string
	extractor   ingest.Extractor
	handle      func(ingest.Result)
	debounce    time.Duration
	initialScan bool
	logger      *slog.Logger
}

// New validates cfg and creates a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", cfg.Dir)
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if cfg.Handle == nil {
		cfg.Handle = func(ingest.Result) {}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Watcher{
		dir:         cfg.Dir,
		extractor:   cfg.Extractor,
		handle:      cfg.Handle,
		debounce:    cfg.Debounce,
		initialScan: cfg.InitialScan,
		logger:      cfg.Logger,
	}, nil
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watch.start", "dir", w.dir, "debounce", w.debounce)

	work := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for path := range work {
			w.extract(ctx, path)
		}
	}()
	defer func() {
		close(work)
		<-done
	}()

	if w.initialScan {
		existing, err := ingest.Discover([]string{w.dir})
		if err != nil {
			return err
		}
		for _, path := range existing {
			if !enqueue(ctx, work, path) {
				return nil
			}
		}
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch.stop", "dir", w.dir)
			return nil

		case e, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ingest.IsPDF(e.Name) || !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
				continue
			}
			pending[e.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				if !enqueue(ctx, work, path) {
					return nil
				}
			}
		}
	}
}

func enqueue(ctx context.Context, work chan<- string, path string) bool {
	select {
	case work <- path:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) extract(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		w.logger.Debug("watch.skip", "path", path, "error", err)
		return
	}

	start := time.Now()
	r, err := w.extractor.Extract(ctx, path)
	res := ingest.Result{Path: path, Report: r, Err: err, Elapsed: time.Since(start)}
	if err != nil {
		w.logger.Warn("watch.extract_failed", "path", path, "error", err)
	} else {
		w.logger.Info("watch.extracted", "path", path, "samples", len(r.Samples))
	}
	w.handle(res)
}
