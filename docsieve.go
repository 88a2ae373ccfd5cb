// Package docsieve provides a fluent API for turning raw per-page document
// content into indexed sentences, detected tables, extracted figures and
// consensus-merged analyzer fields.
//
// Basic usage:
//
//	result, err := docsieve.From(pages).Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//
// With analyzer enhancement:
//
//	result, err := docsieve.From(pages).
//	    WithInvoker(invoker).
//	    WithConfig(cfg).
//	    Run(ctx)
//
// For finer control the pipeline package is also available directly.
package docsieve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/docsieve/docsieve/agents"
	"github.com/docsieve/docsieve/model"
	"github.com/docsieve/docsieve/pipeline"
)

// Processor provides a fluent interface for configuring and running a
// document pipeline. Each configuration method returns a new Processor
// instance, making chains safe to fork and reuse.
type Processor struct {
	source   pipeline.PageIterator
	config   pipeline.Config
	invoker  agents.Invoker
	captions pipeline.CaptionReader
	logger   zerolog.Logger
	err      error
}

// From creates a Processor over in-memory pages.
func From(pages []model.PageContent) *Processor {
	return &Processor{
		source: pipeline.Pages(pages),
		config: pipeline.DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// FromIterator creates a Processor over a streaming page source. The
// iterator is consumed by a single Run.
func FromIterator(it pipeline.PageIterator) *Processor {
	p := &Processor{
		source: it,
		config: pipeline.DefaultConfig(),
		logger: zerolog.Nop(),
	}
	if it == nil {
		p.err = fmt.Errorf("nil page iterator")
	}
	return p
}

// clone returns a shallow copy so chain methods never mutate their receiver.
func (p *Processor) clone() *Processor {
	c := *p
	return &c
}

// WithConfig replaces the pipeline configuration. Zero-valued sections fall
// back to defaults.
func (p *Processor) WithConfig(config pipeline.Config) *Processor {
	c := p.clone()
	c.config = config
	return c
}

// WithInvoker enables analyzer enhancement. Without one, detection still
// runs and items carry no consensus.
func (p *Processor) WithInvoker(invoker agents.Invoker) *Processor {
	c := p.clone()
	c.invoker = invoker
	return c
}

// WithCaptionReader installs a raster caption fallback for figures with no
// caption-adjacent text, typically an ocr.Reader.
func (p *Processor) WithCaptionReader(r pipeline.CaptionReader) *Processor {
	c := p.clone()
	c.captions = r
	return c
}

// WithLogger attaches a logger; the default discards everything.
func (p *Processor) WithLogger(logger zerolog.Logger) *Processor {
	c := p.clone()
	c.logger = logger
	return c
}

// Run executes the pipeline end to end.
func (p *Processor) Run(ctx context.Context) (*pipeline.Result, error) {
	if p.err != nil {
		return nil, p.err
	}

	orch := pipeline.NewWithConfig(p.invoker, p.config, p.logger)
	if p.captions != nil {
		orch.SetCaptionReader(p.captions)
	}
	return orch.Run(ctx, p.source)
}

// Must wraps a call returning (T, error) and panics on error. Intended for
// scripts and tests.
//
// Example:
//
//	result := docsieve.Must(docsieve.From(pages).Run(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
