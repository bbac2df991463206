package meme

import (
	"context"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// RenderClient is the rendering slice of the provider client.
type RenderClient interface {
	CaptionImage(ctx context.Context, templateID string, captions []string) (*imgflip.MemeResult, error)
}

// Renderer submits captions for a template. It trusts callers to have
// mapped captions correctly but still validates the count and fails
// fast rather than forwarding a malformed request. Rendering is not
// idempotent-safe to blindly retry, so no retries happen here.
type Renderer struct {
	client RenderClient
}

// NewRenderer creates a renderer over the provider client.
func NewRenderer(client RenderClient) *Renderer {
	return &Renderer{client: client}
}

// Render submits the captions and returns the final image URLs. The
// caption count must equal the template's box count; a mismatch fails
// with KindCaptionCountMismatch before any provider call is made.
func (r *Renderer) Render(ctx context.Context, templateID string, boxCount int, captions []string) (*imgflip.MemeResult, error) {
	if boxCount > 0 && len(captions) != boxCount {
		return nil, imgflip.Errorf(imgflip.KindCaptionCountMismatch,
			"template %s requires %d captions, got %d", templateID, boxCount, len(captions))
	}
	if len(captions) == 0 {
		return nil, imgflip.NewError(imgflip.KindCaptionCountMismatch, "no captions provided")
	}

	return r.client.CaptionImage(ctx, templateID, captions)
}
