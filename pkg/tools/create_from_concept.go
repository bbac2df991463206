package tools

import (
	"context"

	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// CreateFromConceptTool returns the concept-to-meme tool definition
func (t *Toolkit) CreateFromConceptTool() protocol.Tool {
	return protocol.Tool{
		Name: "imgflip_create_from_concept",
		Description: `
		Creates a meme from a free-text concept with no template named.
		Runs the whole pipeline: derives search terms, picks the best
		matching template (falling back to the most popular one when
		nothing matches), writes one caption per text box and renders
		the image. Returns the image URL plus what was chosen and why.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"concept": {
					Type:        "string",
					Description: "The meme concept or idea",
				},
			},
			Required: []string{"concept"},
		},
	}
}

// HandleCreateFromConcept handles the concept-to-meme tool invocation
func (t *Toolkit) HandleCreateFromConcept(params any) (any, error) {
	paramsMap, err := paramsAsMap(params)
	if err != nil {
		return nil, err
	}

	concept, err := stringParam(paramsMap, "concept")
	if err != nil {
		return nil, err
	}

	result, err := t.pipeline.CreateFromConcept(context.Background(), concept)
	if err != nil {
		return nil, err
	}

	response := map[string]any{
		"image_url":        result.Meme.ImageURL,
		"page_url":         result.Meme.PageURL,
		"template_id_used": result.Meme.TemplateID,
		"template_name":    result.Template.Name,
		"confidence":       string(result.Source),
		"search_terms":     result.SearchTerms,
		"captions":         result.Captions,
	}
	if result.MatchedTerm != "" {
		response["matched_term"] = result.MatchedTerm
	}
	return response, nil
}
