// Package pipeline turns a soil report PDF into a typed SoilReport.
//
// One Extract call is linear: render pages, encode them, build a single
// multimodal request, call the transport once, isolate the fenced JSON in
// the reply and decode it. The first failure aborts the run.
package pipeline

import (
	"context"
	"errors"
	"image/png"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soilextract/soilextract/internal/encode"
	"github.com/soilextract/soilextract/internal/providers"
	"github.com/soilextract/soilextract/internal/render"
	"github.com/soilextract/soilextract/internal/reply"
	"github.com/soilextract/soilextract/internal/report"
)

// PageSource yields the rendered pages of a document in order.
// *render.Rasterizer implements it.
type PageSource interface {
	Pages(ctx context.Context, path string) iter.Seq2[render.Page, error]
}

// Options configures a Pipeline.
type Options struct {
	Pages         PageSource          // defaults to a go-fitz Rasterizer at 1024x1024
	Encoder       *encode.Encoder     // defaults to default PNG compression
	Transport     providers.Transport // required
	Prompt        string              // instruction text sent before the images
	Model         string              // defaults to providers.DefaultModel
	MaxTokens     int                 // defaults to providers.DefaultMaxTokens
	EncodeWorkers int                 // concurrent PNG encoders, <= 1 is sequential

	// Preflight checks a file before rendering. Nil skips the check.
	Preflight func(path string) (int, error)

	Logger *slog.Logger
}

// Pipeline runs extractions. It holds no per-run state, so concurrent
// Extract calls are independent.
type Pipeline struct {
	pages     PageSource
	encoder   *encode.Encoder
	transport providers.Transport
	prompt    string
	model     string
	maxTokens int
	workers   int
	preflight func(path string) (int, error)
	logger    *slog.Logger
}

// New creates a Pipeline, filling unset options with defaults.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pages == nil {
		opts.Pages = render.NewRasterizer(render.Config{Logger: opts.Logger})
	}
	if opts.Encoder == nil {
		opts.Encoder = encode.NewEncoder(png.DefaultCompression)
	}
	if opts.Model == "" {
		opts.Model = providers.DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = providers.DefaultMaxTokens
	}
	if opts.EncodeWorkers < 1 {
		opts.EncodeWorkers = 1
	}

	return &Pipeline{
		pages:     opts.Pages,
		encoder:   opts.Encoder,
		transport: opts.Transport,
		prompt:    opts.Prompt,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		workers:   opts.EncodeWorkers,
		preflight: opts.Preflight,
		logger:    opts.Logger,
	}
}

// Extract converts the document at path into a SoilReport.
// On failure the report is nil and the error is a *Error.
func (p *Pipeline) Extract(ctx context.Context, path string) (*report.SoilReport, error) {
	log := p.logger.With("req_id", uuid.New().String(), "path", path)
	start := time.Now()
	log.Info("pipeline.extract.start", "model", p.model)

	fail := func(kind Kind, err error) (*report.SoilReport, error) {
		if k := classify(err); k != KindUnknown {
			kind = k
		}
		log.Error("pipeline.extract.failed",
			"kind", kind,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &Error{Kind: kind, Path: path, Err: err}
	}

	if p.transport == nil {
		return fail(KindTransport, errors.New("no transport configured"))
	}

	if p.preflight != nil {
		n, err := p.preflight(path)
		if err != nil {
			return fail(KindDocument, err)
		}
		log.Debug("pipeline.preflight", "pages", n)
	}

	images, err := p.encodePages(ctx, path)
	if err != nil {
		return fail(KindDocument, err)
	}
	log.Info("pipeline.pages.encoded", "pages", len(images))

	req := providers.BuildRequest(p.model, p.prompt, p.maxTokens, images)
	completion, err := p.transport.Complete(ctx, req)
	if err != nil {
		return fail(KindTransport, err)
	}

	text, err := reply.FirstMessage(completion)
	if err != nil {
		return fail(KindNoMessages, err)
	}
	log.Info("pipeline.transport.done",
		"choices", len(completion.Choices),
		"total_tokens", completion.Usage.TotalTokens,
	)
	payload, err := reply.ExtractJSON(text)
	if err != nil {
		return fail(KindNoJSONSection, err)
	}

	r, err := report.Decode(payload)
	if err != nil {
		return fail(KindSchema, err)
	}

	log.Info("pipeline.extract.done",
		"report_number", r.ReportNumber,
		"samples", len(r.Samples),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return r, nil
}

// encodePages renders and encodes every page. With more than one worker,
// encoding overlaps rendering; results are placed by page index.
func (p *Pipeline) encodePages(ctx context.Context, path string) ([]encode.PageImage, error) {
	if p.workers <= 1 {
		var images []encode.PageImage
		for page, err := range p.pages.Pages(ctx, path) {
			if err != nil {
				return nil, err
			}
			img, err := p.encoder.Encode(page)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
		return images, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var slots []*encode.PageImage
	var renderErr error
	for page, err := range p.pages.Pages(gctx, path) {
		if err != nil {
			renderErr = err
			break
		}
		slot := new(encode.PageImage)
		slots = append(slots, slot)
		g.Go(func() error {
			img, err := p.encoder.Encode(page)
			if err != nil {
				return err
			}
			*slot = img
			return nil
		})
	}

	// An encoding failure cancels gctx, which surfaces in the page
	// sequence as a cancelled render. Report the encoding failure.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if renderErr != nil {
		return nil, renderErr
	}

	images := make([]encode.PageImage, len(slots))
	for i, slot := range slots {
		images[i] = *slot
	}
	return images, nil
}
