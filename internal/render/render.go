// Package render rasterizes PDF pages to PNG images with MuPDF.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/observability"
)

// Page is one rendered page. Numbers start at 1.
type Page struct {
	Number int
	PNG    []byte
}

// Result holds the rendered pages in document order.
type Result struct {
	Pages     []Page
	PageCount int
	DPI       int
}

// Renderer converts PDF documents into page images. Rendering either
// produces every page or fails; no partial results are returned.
type Renderer struct {
	cfg     *config.ConvertConfig
	logger  observability.Logger
	metrics observability.Metrics
}

func NewRenderer(cfg *config.ConvertConfig, logger observability.Logger, metrics observability.Metrics) *Renderer {
	return &Renderer{cfg: cfg, logger: logger, metrics: metrics}
}

// Render rasterizes every page of the document. The page count is checked
// against the configured limit before any page is rendered, and the whole
// phase runs under the configured render deadline.
func (r *Renderer) Render(ctx context.Context, document []byte) (*Result, error) {
	r.metrics.StartOperation("render")
	defer r.metrics.EndOperation("render")
	start := time.Now()
	defer func() {
		r.metrics.RecordDuration("render", time.Since(start).Seconds())
	}()

	result, err := r.render(ctx, document)
	if err != nil {
		r.metrics.RecordError("render", domain.MetricLabel(err))
		return nil, err
	}

	r.metrics.RecordSuccess("render")
	r.logger.Info(ctx, "document rendered", observability.Fields{
		"pages":            result.PageCount,
		"dpi":              result.DPI,
		"duration_seconds": time.Since(start).Seconds(),
	})
	return result, nil
}

func (r *Renderer) render(ctx context.Context, document []byte) (*Result, error) {
	pageCount, err := r.countPages(document)
	if err != nil {
		return nil, err
	}

	if pageCount == 0 {
		return nil, domain.NewError(domain.CodeInvalidFormat, "Document has no pages", nil)
	}
	if pageCount > r.cfg.MaxPages {
		return nil, domain.NewError(domain.CodeTooManyPages,
			fmt.Sprintf("Document exceeds the %d page limit", r.cfg.MaxPages),
			fmt.Errorf("document has %d pages", pageCount))
	}

	phaseCtx := ctx
	cancelPhase := func() {}
	if r.cfg.RenderTimeout > 0 {
		phaseCtx, cancelPhase = context.WithTimeout(ctx, r.cfg.RenderTimeout)
	}
	defer cancelPhase()

	pages, err := r.renderPages(phaseCtx, document, pageCount)
	if err != nil {
		if phaseCtx.Err() != nil {
			return nil, domain.NewError(domain.CodeConversionTimeout,
				"Rendering did not finish in time", phaseCtx.Err())
		}
		return nil, err
	}

	return &Result{Pages: pages, PageCount: pageCount, DPI: r.cfg.DPI}, nil
}

// countPages opens the document once to validate it and read its length.
func (r *Renderer) countPages(document []byte) (int, error) {
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return 0, domain.NewError(domain.CodeInvalidFormat, "Document could not be opened for rendering", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// renderPages fans page indexes out to a bounded pool. Document handles
// are not safe for concurrent use, so every pool worker opens its own
// from the shared bytes. The first failure cancels the remaining work.
func (r *Renderer) renderPages(ctx context.Context, document []byte, pageCount int) ([]Page, error) {
	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > pageCount {
		workers = pageCount
	}

	poolCtx, cancelPool := context.WithCancel(ctx)
	defer cancelPool()

	pages := make([]Page, pageCount)
	indexes := make(chan int)

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancelPool()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			doc, err := fitz.NewFromMemory(document)
			if err != nil {
				fail(fmt.Errorf("opening document: %w", err))
				return
			}
			defer doc.Close()

			for index := range indexes {
				if poolCtx.Err() != nil {
					return
				}
				data, err := r.renderPage(doc, index)
				if err != nil {
					fail(err)
					return
				}
				pages[index] = Page{Number: index + 1, PNG: data}
				r.metrics.RecordFileSize("png", int64(len(data)))
			}
		}()
	}

feed:
	for index := 0; index < pageCount; index++ {
		select {
		case indexes <- index:
		case <-poolCtx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, domain.NewError(domain.CodeRenderFailed, "Rendering failed", firstErr)
	}
	return pages, nil
}

func (r *Renderer) renderPage(doc *fitz.Document, index int) ([]byte, error) {
	img, err := doc.ImageDPI(index, float64(r.cfg.DPI))
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", index+1, err)
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page %d: %w", index+1, err)
	}
	return buf.Bytes(), nil
}
