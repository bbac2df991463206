package tools

import (
	"fmt"

	"github.com/flipkit/imgflip-mcp/internal/config"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
	"github.com/flipkit/imgflip-mcp/pkg/meme"
)

// Toolkit holds the wired pipeline components behind the meme tools.
// One toolkit serves the whole process; the catalog inside it is the
// only shared mutable state.
type Toolkit struct {
	client   *imgflip.Client
	catalog  *meme.Catalog
	resolver *meme.Resolver
	terms    meme.TermGenerator
	captions meme.CaptionMapper
	renderer *meme.Renderer
	pipeline *meme.Pipeline
	maxTerms int
}

// NewToolkit wires the provider client and pipeline from configuration.
func NewToolkit(cfg *config.Config) *Toolkit {
	client := imgflip.NewClient(imgflip.Options{
		BaseURL:     cfg.Imgflip.BaseURL,
		Username:    cfg.Imgflip.Username,
		Password:    cfg.Imgflip.Password,
		Timeout:     cfg.Imgflip.Timeout,
		Font:        cfg.Imgflip.Font,
		MaxFontSize: cfg.Imgflip.MaxFontSize,
	})

	catalog := meme.NewCatalog(client)

	// Premium search needs both the toggle and credentials; without
	// them the resolver matches terms against the cached catalog.
	var searcher meme.Searcher
	if cfg.Imgflip.PremiumSearch && client.HasCredentials() {
		searcher = client
	}
	resolver := meme.NewResolver(catalog, searcher)

	var terms meme.TermGenerator
	var captions meme.CaptionMapper
	if cfg.Generator.Provider == "llm" && cfg.Generator.APIKey != "" {
		opts := meme.GeneratorOptions{
			BaseURL: cfg.Generator.BaseURL,
			Model:   cfg.Generator.Model,
			APIKey:  cfg.Generator.APIKey,
			Timeout: cfg.Generator.Timeout,
		}
		terms = meme.NewLLMTermGenerator(opts)
		captions = meme.NewLLMCaptionMapper(opts)
	} else {
		terms = meme.NewHeuristicTermGenerator()
		captions = meme.NewHeuristicCaptionMapper()
	}

	renderer := meme.NewRenderer(client)
	pipeline := meme.NewPipeline(terms, resolver, captions, renderer, cfg.Generator.MaxTerms)

	return &Toolkit{
		client:   client,
		catalog:  catalog,
		resolver: resolver,
		terms:    terms,
		captions: captions,
		renderer: renderer,
		pipeline: pipeline,
		maxTerms: cfg.Generator.MaxTerms,
	}
}

// Parameter extraction helpers shared by the tool handlers. Tool
// arguments arrive as untyped JSON maps.

func paramsAsMap(params any) (map[string]any, error) {
	if params == nil {
		return nil, fmt.Errorf("no parameters given")
	}
	paramsMap, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format")
	}
	return paramsMap, nil
}

func stringParam(paramsMap map[string]any, key string) (string, error) {
	value, ok := paramsMap[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s parameter is required and must be a string", key)
	}
	return value, nil
}

func optionalStringParam(paramsMap map[string]any, key string) string {
	value, _ := paramsMap[key].(string)
	return value
}

func optionalBoolParam(paramsMap map[string]any, key string) bool {
	value, _ := paramsMap[key].(bool)
	return value
}

func stringSliceParam(paramsMap map[string]any, key string) ([]string, error) {
	raw, ok := paramsMap[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s parameter is required and must be an array of strings", key)
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s parameter must contain only strings", key)
		}
		values = append(values, s)
	}
	return values, nil
}

func templateToMap(tpl imgflip.Template) map[string]any {
	return map[string]any{
		"id":              tpl.ID,
		"name":            tpl.Name,
		"url":             tpl.URL,
		"box_count":       tpl.BoxCount,
		"popularity_rank": tpl.PopularityRank,
	}
}
