package meme

import (
	"context"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// Pipeline runs the full concept-to-meme sequence: term generation,
// template resolution, caption mapping, rendering. The five stages run
// strictly in order within one invocation; a request either completes
// or fails atomically from the caller's point of view.
type Pipeline struct {
	terms    TermGenerator
	resolver *Resolver
	captions CaptionMapper
	renderer *Renderer
	maxTerms int
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(terms TermGenerator, resolver *Resolver, captions CaptionMapper, renderer *Renderer, maxTerms int) *Pipeline {
	if maxTerms < 1 {
		maxTerms = 3
	}
	return &Pipeline{
		terms:    terms,
		resolver: resolver,
		captions: captions,
		renderer: renderer,
		maxTerms: maxTerms,
	}
}

// Result is what a completed pipeline run hands back to the caller.
type Result struct {
	Meme        *imgflip.MemeResult
	Template    imgflip.Template
	Source      ConfidenceSource
	MatchedTerm string
	SearchTerms []string
	Captions    []string
}

// CreateFromConcept turns a free-text concept into a rendered meme.
func (p *Pipeline) CreateFromConcept(ctx context.Context, concept string) (*Result, error) {
	terms, err := p.terms.GenerateTerms(ctx, concept, p.maxTerms)
	if err != nil {
		return nil, err
	}
	logger.Info("Generated search terms %v for concept", terms)

	resolved, err := p.resolver.Resolve(ctx, Query{SearchTerms: terms})
	if err != nil {
		return nil, err
	}

	captions, err := p.captions.MapCaptions(ctx, concept, resolved.Template.BoxCount)
	if err != nil {
		return nil, err
	}

	meme, err := p.renderer.Render(ctx, resolved.Template.ID, resolved.Template.BoxCount, captions)
	if err != nil {
		return nil, err
	}

	return &Result{
		Meme:        meme,
		Template:    resolved.Template,
		Source:      resolved.Source,
		MatchedTerm: resolved.MatchedTerm,
		SearchTerms: terms,
		Captions:    captions,
	}, nil
}
