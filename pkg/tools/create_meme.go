package tools

import (
	"context"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// CreateMemeTool returns the meme creation tool definition
func (t *Toolkit) CreateMemeTool() protocol.Tool {
	return protocol.Tool{
		Name: "imgflip_create_meme",
		Description: `
		Creates a meme from a template id and caption text.
		The text_boxes array must contain exactly one string per text box
		of the template, in the template's box order; check box_count
		with imgflip_get_template_info first.
		Returns the direct image URL and the imgflip page URL.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"template_id": {
					Type:        "string",
					Description: "ID of the meme template to caption",
				},
				"text_boxes": {
					Type:        "array",
					Description: "One caption string per template text box, in box order",
					Items:       &protocol.ToolProperty{Type: "string"},
				},
			},
			Required: []string{"template_id", "text_boxes"},
		},
	}
}

// HandleCreateMeme handles the meme creation tool invocation
func (t *Toolkit) HandleCreateMeme(params any) (any, error) {
	paramsMap, err := paramsAsMap(params)
	if err != nil {
		return nil, err
	}

	templateID, err := stringParam(paramsMap, "template_id")
	if err != nil {
		return nil, err
	}
	captions, err := stringSliceParam(paramsMap, "text_boxes")
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	// Validate the caption count against the template before touching
	// the render endpoint. A wrong count is a hard error, never padded
	// or truncated.
	boxCount, tplName := t.boxCountFor(ctx, templateID)

	result, err := t.renderer.Render(ctx, templateID, boxCount, captions)
	if err != nil {
		return nil, err
	}

	response := map[string]any{
		"image_url":        result.ImageURL,
		"page_url":         result.PageURL,
		"template_id_used": result.TemplateID,
		"captions":         captions,
	}
	if tplName != "" {
		response["template_name"] = tplName
	}
	return response, nil
}

// boxCountFor resolves the template's box count from the catalog or the
// premium lookup. Zero means the count could not be determined, in
// which case the renderer forwards the request as given.
func (t *Toolkit) boxCountFor(ctx context.Context, templateID string) (int, string) {
	tpl, ok, err := t.catalog.Lookup(ctx, templateID)
	if err == nil && ok {
		return tpl.BoxCount, tpl.Name
	}
	if err != nil {
		logger.Warn("Catalog unavailable for box count check: %v", err)
	}

	if t.client.HasCredentials() {
		fetched, err := t.client.GetMeme(ctx, templateID)
		if err == nil {
			return fetched.BoxCount, fetched.Name
		}
		if !imgflip.IsKind(err, imgflip.KindProviderRejected) {
			logger.Warn("Template lookup for box count check failed: %v", err)
		}
	}

	logger.Warn("Box count unknown for template %s, forwarding captions as given", templateID)
	return 0, ""
}
