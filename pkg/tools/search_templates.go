package tools

import (
	"context"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
	"github.com/flipkit/imgflip-mcp/pkg/meme"
	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// SearchTemplatesTool returns the template search tool definition
func (t *Toolkit) SearchTemplatesTool() protocol.Tool {
	return protocol.Tool{
		Name: "imgflip_search_memes",
		Description: `
		Searches for meme templates matching a keyword query.
		Returns an ordered list of templates, each with its id, name and
		box_count (the number of text captions the template needs).
		Use the returned id with imgflip_create_meme.
		Keep queries simple: single words that could appear in a template
		name work best ("drake", "confused", "cat").
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"query": {
					Type:        "string",
					Description: "Search query for meme templates",
				},
				"include_nsfw": {
					Type:        "boolean",
					Description: "Include NSFW templates in results",
					Default:     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// HandleSearchTemplates handles the template search tool invocation
func (t *Toolkit) HandleSearchTemplates(params any) (any, error) {
	paramsMap, err := paramsAsMap(params)
	if err != nil {
		return nil, err
	}

	query, err := stringParam(paramsMap, "query")
	if err != nil {
		return nil, err
	}
	includeNSFW := optionalBoolParam(paramsMap, "include_nsfw")

	ctx := context.Background()

	// Premium search first when available; otherwise (or when it is
	// declined) match against the cached popular listing.
	if t.client.HasCredentials() {
		results, err := t.client.SearchMemes(ctx, query, includeNSFW)
		if err == nil {
			return searchResponse(results, "search"), nil
		}
		if imgflip.IsKind(err, imgflip.KindProviderUnavailable) {
			return nil, err
		}
		logger.Warn("Premium search failed, falling back to catalog: %v", err)
	}

	templates, err := t.catalog.Templates(ctx)
	if err != nil {
		return nil, err
	}
	matches := meme.FilterByTerm(templates, query)
	return searchResponse(matches, "popular-catalog"), nil
}

func searchResponse(templates []imgflip.Template, source string) map[string]any {
	list := make([]map[string]any, 0, len(templates))
	for _, tpl := range templates {
		list = append(list, templateToMap(tpl))
	}
	return map[string]any{
		"templates": list,
		"count":     len(list),
		"source":    source,
	}
}
