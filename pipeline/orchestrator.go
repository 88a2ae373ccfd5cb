package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/docsieve/docsieve/agents"
	"github.com/docsieve/docsieve/classify"
	"github.com/docsieve/docsieve/consensus"
	"github.com/docsieve/docsieve/figures"
	"github.com/docsieve/docsieve/index"
	"github.com/docsieve/docsieve/model"
	"github.com/docsieve/docsieve/tables"
)

// PageIterator yields document pages in order. Next returns io.EOF after the
// last page; iterators are exhausted by a single run.
type PageIterator interface {
	Next() (*model.PageContent, error)
}

// Pages adapts an in-memory slice to the PageIterator interface.
func Pages(pages []model.PageContent) PageIterator {
	return &sliceIterator{pages: pages}
}

type sliceIterator struct {
	pages []model.PageContent
	pos   int
}

func (it *sliceIterator) Next() (*model.PageContent, error) {
	if it.pos >= len(it.pages) {
		return nil, io.EOF
	}
	p := &it.pages[it.pos]
	it.pos++
	return p, nil
}

// RunStats reports per-run counters and wall-clock duration.
type RunStats struct {
	Pages            int
	Chunks           int
	TablesDetected   int
	FiguresDetected  int
	PagesFailed      int
	RasterWarnings   int
	AnalyzersInvoked int
	AnalyzersFailed  int
	Duration         time.Duration
}

// Result is the output of a pipeline run.
type Result struct {
	Chunks    []model.TextChunk
	Citations *model.CitationMap
	Tables    []*model.ExtractedTable
	Figures   []*model.ExtractedFigure
	Stats     RunStats
}

// CaptionReader recovers caption text from raster data, for figures whose
// page carries no caption-adjacent runs. The orchestrator calls it from a
// single goroutine, so implementations wrapping a stateful engine (such as
// one OCR client) need no locking of their own.
type CaptionReader interface {
	CaptionText(img *model.RGBAImage) (string, error)
}

// Orchestrator wires the detection stages to the analyzer fan-out.
type Orchestrator struct {
	config     Config
	indexer    *index.Indexer
	detector   tables.Detector
	extractor  *figures.Extractor
	classifier *classify.Classifier
	aggregator *consensus.Aggregator
	captions   CaptionReader
	logger     zerolog.Logger
}

// SetCaptionReader installs a raster caption fallback, typically an OCR
// reader. It applies to figures that end up with an empty caption.
func (o *Orchestrator) SetCaptionReader(r CaptionReader) {
	o.captions = r
}

// New creates an Orchestrator with default configuration and no logging.
// A nil invoker disables analyzer enhancement; detection still runs.
func New(invoker agents.Invoker) *Orchestrator {
	return NewWithConfig(invoker, DefaultConfig(), zerolog.Nop())
}

// NewWithConfig creates an Orchestrator with the given configuration.
func NewWithConfig(invoker agents.Invoker, config Config, logger zerolog.Logger) *Orchestrator {
	config.defaults()

	detector := tables.NewGeometricDetector()
	if err := detector.Configure(config.Tables); err != nil {
		logger.Warn().Err(err).Msg("detector configuration rejected, using defaults")
	}

	var aggregator *consensus.Aggregator
	if invoker != nil {
		aggregator = consensus.NewWithConfig(invoker, consensus.Config{
			CallTimeout: config.CallTimeout,
		}, logger)
	}

	return &Orchestrator{
		config:     config,
		indexer:    index.NewWithConfig(config.Index),
		detector:   detector,
		extractor:  figures.NewWithConfig(config.Figures),
		classifier: classify.NewWithConfig(config.Classify),
		aggregator: aggregator,
		logger:     logger,
	}
}

// pageOutput is one page's detection result.
type pageOutput struct {
	chunks   []model.TextChunk
	tables   []*model.ExtractedTable
	figures  []*model.ExtractedFigure
	warnings int
	failed   bool
}

// Run processes the document end to end. Only an iterator failure or
// cancellation returns an error; per-page and per-analyzer failures are
// recovered and counted in the stats.
func (o *Orchestrator) Run(ctx context.Context, pages PageIterator) (*Result, error) {
	start := time.Now()

	var collected []*model.PageContent
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := pages.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("page iterator: %w", err)
		}
		collected = append(collected, page)
	}

	outputs, err := o.detectPages(ctx, collected)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	result.Stats.Pages = len(collected)

	// Re-indexing is a single sequential pass so global chunk indices stay
	// contiguous regardless of detection order.
	perPage := make([][]model.TextChunk, len(outputs))
	for i, out := range outputs {
		perPage[i] = out.chunks
		result.Tables = append(result.Tables, out.tables...)
		result.Figures = append(result.Figures, out.figures...)
		result.Stats.RasterWarnings += out.warnings
		if out.failed {
			result.Stats.PagesFailed++
		}
	}
	chunks, citations, err := o.indexer.Reindex(perPage)
	if err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	result.Chunks = chunks
	result.Citations = citations
	result.Stats.Chunks = len(chunks)
	result.Stats.TablesDetected = len(result.Tables)
	result.Stats.FiguresDetected = len(result.Figures)

	o.recoverCaptions(result.Figures)
	o.enhance(ctx, result)

	result.Stats.Duration = time.Since(start)
	o.logger.Info().
		Int("pages", result.Stats.Pages).
		Int("chunks", result.Stats.Chunks).
		Int("tables", result.Stats.TablesDetected).
		Int("figures", result.Stats.FiguresDetected).
		Int("analyzers_failed", result.Stats.AnalyzersFailed).
		Dur("duration", result.Stats.Duration).
		Msg("pipeline run complete")

	return result, nil
}

// detectPages runs indexing, table detection and figure extraction on a
// bounded worker pool. Detection failures are recovered per page; only
// cancellation stops the pool, and then only at page boundaries.
func (o *Orchestrator) detectPages(ctx context.Context, pages []*model.PageContent) ([]pageOutput, error) {
	outputs := make([]pageOutput, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = o.detectPage(page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (o *Orchestrator) detectPage(page *model.PageContent) pageOutput {
	var out pageOutput

	out.chunks = o.indexer.IndexPage(page)

	detected, err := o.detector.Detect(page)
	if err != nil {
		out.failed = true
		o.logger.Warn().Int("page", page.Number).Err(err).Msg("table detection failed")
	} else {
		out.tables = detected
	}

	figs, warnings, err := o.extractor.Extract(page)
	if err != nil {
		out.failed = true
		o.logger.Warn().Int("page", page.Number).Err(err).Msg("figure extraction failed")
	} else {
		out.figures = figs
		out.warnings = len(warnings)
		for _, w := range warnings {
			o.logger.Warn().Int("page", page.Number).Int("raster", w.Raster).Err(w.Err).Msg("raster skipped")
		}
	}

	return out
}

// recoverCaptions fills empty figure captions from raster data. It runs on
// the sequential pass after page-parallel detection: the caption reader may
// wrap a single stateful OCR client, so its calls must never overlap.
func (o *Orchestrator) recoverCaptions(figs []*model.ExtractedFigure) {
	if o.captions == nil {
		return
	}
	for _, fig := range figs {
		if fig.Caption != "" {
			continue
		}
		text, err := o.captions.CaptionText(fig.Raster)
		if err != nil {
			o.logger.Warn().Int("page", fig.Page).Str("figure", fig.ID).Err(err).Msg("caption recovery failed")
			continue
		}
		fig.Caption = text
	}
}

// enhance classifies, routes and analyzer-enhances every detected item.
// Cancellation is cooperative at the fan-out boundary: once the context is
// done, remaining items are left unenhanced.
func (o *Orchestrator) enhance(ctx context.Context, result *Result) {
	if o.aggregator == nil {
		return
	}

	for _, table := range result.Tables {
		if ctx.Err() != nil {
			return
		}
		ct := o.classifier.ClassifyTable(table)
		table.Consensus = o.enhanceItem(ctx, agents.TableItem(table), ct, &result.Stats)
	}
	for _, figure := range result.Figures {
		if ctx.Err() != nil {
			return
		}
		ct := o.classifier.ClassifyFigure(figure)
		figure.Consensus = o.enhanceItem(ctx, agents.FigureItem(figure), ct, &result.Stats)
	}
}

func (o *Orchestrator) enhanceItem(ctx context.Context, item agents.Item, contentType model.ContentType, stats *RunStats) *model.ConsensusResult {
	analyzerIDs := classify.Route(contentType)
	stats.AnalyzersInvoked += len(analyzerIDs)

	consensusResult, failed, err := o.aggregator.Enhance(ctx, item, analyzerIDs, contentType)
	stats.AnalyzersFailed += len(failed)
	if err != nil {
		// Geometric extraction survives analyzer failure; the item simply
		// carries no consensus.
		o.logger.Warn().Str("item", item.ID()).Err(err).Msg("enhancement produced no consensus")
		return nil
	}
	return consensusResult
}
