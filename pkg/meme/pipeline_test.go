package meme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// fakeRender records render calls and returns a canned result.
type fakeRender struct {
	calls    int
	lastID   string
	lastText []string
	err      error
}

func (f *fakeRender) CaptionImage(ctx context.Context, templateID string, captions []string) (*imgflip.MemeResult, error) {
	f.calls++
	f.lastID = templateID
	f.lastText = captions
	if f.err != nil {
		return nil, f.err
	}
	return &imgflip.MemeResult{
		ImageURL:   "https://i.imgflip.com/fake.jpg",
		PageURL:    "https://imgflip.com/i/fake",
		TemplateID: templateID,
	}, nil
}

func newFixturePipeline(render *fakeRender) *Pipeline {
	catalog := NewCatalog(&fakeListing{templates: []imgflip.Template{
		{ID: "61520", Name: "Futurama Fry", BoxCount: 2, PopularityRank: 0},
		{ID: "deb-1", Name: "Debugging Nightmare", BoxCount: 2, PopularityRank: 1},
	}})
	return NewPipeline(
		NewHeuristicTermGenerator(),
		NewResolver(catalog, nil),
		NewHeuristicCaptionMapper(),
		NewRenderer(render),
		3,
	)
}

func TestPipelineCreateFromConcept(t *testing.T) {
	render := &fakeRender{}
	pipeline := newFixturePipeline(render)

	result, err := pipeline.CreateFromConcept(context.Background(),
		"debugging for six hours but the fix was one character")
	require.NoError(t, err)

	assert.Equal(t, "deb-1", result.Template.ID)
	assert.Equal(t, SearchMatch, result.Source)
	assert.NotEmpty(t, result.MatchedTerm)
	assert.NotEmpty(t, result.SearchTerms)
	require.Len(t, result.Captions, result.Template.BoxCount)
	assert.Equal(t, "https://i.imgflip.com/fake.jpg", result.Meme.ImageURL)

	assert.Equal(t, 1, render.calls)
	assert.Equal(t, "deb-1", render.lastID)
	assert.Equal(t, result.Captions, render.lastText)
}

func TestPipelineFallsBackToMostPopular(t *testing.T) {
	render := &fakeRender{}
	pipeline := newFixturePipeline(render)

	result, err := pipeline.CreateFromConcept(context.Background(), "quantum entanglement paradox")
	require.NoError(t, err)
	assert.Equal(t, "61520", result.Template.ID)
	assert.Equal(t, PopularityFallback, result.Source)
	assert.Empty(t, result.MatchedTerm)
}

func TestPipelineEmptyConceptFailsBeforeAnyCall(t *testing.T) {
	render := &fakeRender{}
	pipeline := newFixturePipeline(render)

	_, err := pipeline.CreateFromConcept(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, imgflip.KindGenerationFailed, imgflip.KindOf(err))
	assert.Zero(t, render.calls)
}

func TestPipelinePropagatesCatalogFailure(t *testing.T) {
	listing := &fakeListing{err: imgflip.NewError(imgflip.KindProviderUnavailable, "down")}
	render := &fakeRender{}
	pipeline := NewPipeline(
		NewHeuristicTermGenerator(),
		NewResolver(NewCatalog(listing), nil),
		NewHeuristicCaptionMapper(),
		NewRenderer(render),
		3,
	)

	_, err := pipeline.CreateFromConcept(context.Background(), "server is down again")
	require.Error(t, err)
	assert.Equal(t, imgflip.KindProviderUnavailable, imgflip.KindOf(err))
	assert.Zero(t, render.calls)
}

func TestPipelinePropagatesRenderFailure(t *testing.T) {
	render := &fakeRender{err: imgflip.NewError(imgflip.KindProviderRejected, "invalid credentials")}
	pipeline := newFixturePipeline(render)

	_, err := pipeline.CreateFromConcept(context.Background(),
		"debugging all night but nothing works")
	require.Error(t, err)
	assert.Equal(t, imgflip.KindProviderRejected, imgflip.KindOf(err))
}

func TestRendererRejectsCountMismatchWithoutProviderCall(t *testing.T) {
	render := &fakeRender{}
	renderer := NewRenderer(render)

	_, err := renderer.Render(context.Background(), "61520", 2, []string{"only one"})
	require.Error(t, err)
	assert.Equal(t, imgflip.KindCaptionCountMismatch, imgflip.KindOf(err))
	assert.Zero(t, render.calls)

	_, err = renderer.Render(context.Background(), "61520", 0, nil)
	require.Error(t, err)
	assert.Equal(t, imgflip.KindCaptionCountMismatch, imgflip.KindOf(err))
	assert.Zero(t, render.calls)
}

func TestRendererForwardsWhenBoxCountUnknown(t *testing.T) {
	render := &fakeRender{}
	renderer := NewRenderer(render)

	// Box count 0 means the template was not in the catalog; the count
	// check is skipped and the provider decides.
	result, err := renderer.Render(context.Background(), "12345", 0, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, render.calls)
	assert.Equal(t, "12345", result.TemplateID)
}
