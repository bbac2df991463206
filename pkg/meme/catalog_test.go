package meme

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// fakeListing serves a fixed template slice and counts upstream fetches.
type fakeListing struct {
	templates []imgflip.Template
	err       error
	delay     time.Duration
	calls     atomic.Int64
}

func (f *fakeListing) GetMemes(ctx context.Context) ([]imgflip.Template, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

func fixtureTemplates() []imgflip.Template {
	return []imgflip.Template{
		{ID: "181913649", Name: "Drake Hotline Bling", BoxCount: 2, PopularityRank: 0},
		{ID: "87743020", Name: "Two Buttons", BoxCount: 3, PopularityRank: 1},
		{ID: "112126428", Name: "Distracted Boyfriend", BoxCount: 3, PopularityRank: 2},
		{ID: "129242436", Name: "Change My Mind", BoxCount: 2, PopularityRank: 3},
		{ID: "61520", Name: "Futurama Fry", BoxCount: 2, PopularityRank: 4},
	}
}

func TestCatalogFetchesOnce(t *testing.T) {
	listing := &fakeListing{templates: fixtureTemplates()}
	catalog := NewCatalog(listing)

	for i := 0; i < 3; i++ {
		templates, err := catalog.Templates(context.Background())
		require.NoError(t, err)
		assert.Len(t, templates, 5)
	}

	assert.Equal(t, int64(1), listing.calls.Load())
}

func TestCatalogCoalescesConcurrentFirstUse(t *testing.T) {
	listing := &fakeListing{templates: fixtureTemplates(), delay: 20 * time.Millisecond}
	catalog := NewCatalog(listing)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = catalog.Templates(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), listing.calls.Load(), "concurrent callers should share one fetch")
}

func TestCatalogDoesNotCacheFailure(t *testing.T) {
	listing := &fakeListing{err: imgflip.NewError(imgflip.KindProviderUnavailable, "connection refused")}
	catalog := NewCatalog(listing)

	_, err := catalog.Templates(context.Background())
	require.Error(t, err)
	assert.Equal(t, imgflip.KindProviderUnavailable, imgflip.KindOf(err))

	// The provider recovers; the next call must retry upstream.
	listing.err = nil
	listing.templates = fixtureTemplates()

	templates, err := catalog.Templates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 5)
	assert.Equal(t, int64(2), listing.calls.Load())
}

func TestCatalogRefreshRefetches(t *testing.T) {
	listing := &fakeListing{templates: fixtureTemplates()}
	catalog := NewCatalog(listing)

	_, err := catalog.Templates(context.Background())
	require.NoError(t, err)

	listing.templates = fixtureTemplates()[:2]
	templates, err := catalog.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Equal(t, int64(2), listing.calls.Load())

	// Subsequent reads see the refreshed listing without a new fetch
	templates, err = catalog.Templates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Equal(t, int64(2), listing.calls.Load())
}

func TestCatalogLookup(t *testing.T) {
	listing := &fakeListing{templates: fixtureTemplates()}
	catalog := NewCatalog(listing)

	tpl, ok, err := catalog.Lookup(context.Background(), "87743020")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Two Buttons", tpl.Name)

	_, ok, err = catalog.Lookup(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}
