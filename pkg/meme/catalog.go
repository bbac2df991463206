package meme

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// ListingClient is the slice of the provider client the catalog needs.
type ListingClient interface {
	GetMemes(ctx context.Context) ([]imgflip.Template, error)
}

// Catalog caches the provider's template listing for the process
// lifetime. Template catalogs change infrequently, so there is no
// expiry; staleness is traded for availability. A failed fetch is never
// cached, the next caller retries.
type Catalog struct {
	client ListingClient
	group  singleflight.Group

	mu        sync.RWMutex
	templates []imgflip.Template
	loaded    bool
}

// NewCatalog creates a catalog backed by the given listing client.
func NewCatalog(client ListingClient) *Catalog {
	return &Catalog{client: client}
}

// Templates returns the cached template listing, fetching it on first
// use. Concurrent first-time callers are coalesced into a single
// upstream fetch; they all share that fetch's outcome.
func (c *Catalog) Templates(ctx context.Context) ([]imgflip.Template, error) {
	c.mu.RLock()
	if c.loaded {
		templates := c.templates
		c.mu.RUnlock()
		return templates, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		// A caller that raced past the fast path while another fetch
		// completed should still see the cached listing.
		c.mu.RLock()
		if c.loaded {
			templates := c.templates
			c.mu.RUnlock()
			return templates, nil
		}
		c.mu.RUnlock()

		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]imgflip.Template), nil
}

// Refresh discards the cached listing and fetches a fresh one.
func (c *Catalog) Refresh(ctx context.Context) ([]imgflip.Template, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]imgflip.Template), nil
}

func (c *Catalog) fetch(ctx context.Context) ([]imgflip.Template, error) {
	templates, err := c.client.GetMemes(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.templates = templates
	c.loaded = true
	c.mu.Unlock()

	logger.Info("Template catalog loaded with %d templates", len(templates))
	return templates, nil
}

// Lookup finds a cached template by its provider id. The second return
// is false when the catalog has no such template.
func (c *Catalog) Lookup(ctx context.Context, templateID string) (imgflip.Template, bool, error) {
	templates, err := c.Templates(ctx)
	if err != nil {
		return imgflip.Template{}, false, err
	}
	for _, tpl := range templates {
		if tpl.ID == templateID {
			return tpl, true, nil
		}
	}
	return imgflip.Template{}, false, nil
}
