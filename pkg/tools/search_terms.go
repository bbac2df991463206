package tools

import (
	"context"

	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// SearchTermsTool returns the search term generation tool definition
func (t *Toolkit) SearchTermsTool() protocol.Tool {
	return protocol.Tool{
		Name: "imgflip_generate_search_terms",
		Description: `
		Generates template search terms for a meme concept, ordered from
		most specific to most generic. Feed the terms one at a time to
		imgflip_search_memes until one of them returns templates.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"concept": {
					Type:        "string",
					Description: "Description of the meme concept or idea",
				},
			},
			Required: []string{"concept"},
		},
	}
}

// HandleSearchTerms handles the search term generation tool invocation
func (t *Toolkit) HandleSearchTerms(params any) (any, error) {
	paramsMap, err := paramsAsMap(params)
	if err != nil {
		return nil, err
	}

	concept, err := stringParam(paramsMap, "concept")
	if err != nil {
		return nil, err
	}

	terms, err := t.terms.GenerateTerms(context.Background(), concept, t.maxTerms)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"concept": concept,
		"terms":   terms,
	}, nil
}
