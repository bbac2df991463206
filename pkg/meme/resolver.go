package meme

import (
	"context"
	"strings"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// ConfidenceSource labels how a template was chosen.
type ConfidenceSource string

const (
	// ExactNameMatch means a named template matched the catalog exactly.
	ExactNameMatch ConfidenceSource = "exact-name-match"

	// SearchMatch means one of the generated search terms matched.
	SearchMatch ConfidenceSource = "search-match"

	// PopularityFallback means no term matched and the most popular
	// template was substituted. Deliberate degradation, not an error.
	PopularityFallback ConfidenceSource = "popularity-fallback"
)

// ResolvedTemplate pairs the chosen template with how it was found.
// Created per request and never cached; search relevance depends on the
// specific concept.
type ResolvedTemplate struct {
	Template imgflip.Template
	Source   ConfidenceSource

	// MatchedTerm is the search term that produced the match, empty
	// for the other confidence sources.
	MatchedTerm string
}

// Query is a resolution request. NamedTemplate takes precedence over
// SearchTerms when set.
type Query struct {
	NamedTemplate string
	SearchTerms   []string
}

// Searcher is the optional premium search slice of the provider client.
type Searcher interface {
	SearchMemes(ctx context.Context, query string, includeNSFW bool) ([]imgflip.Template, error)
}

// Resolver selects exactly one template for a query. Resolution tries
// an ordered list of strategies and short-circuits on the first match:
// exact name, per-term search, then popularity fallback.
type Resolver struct {
	catalog  *Catalog
	searcher Searcher
}

// NewResolver creates a resolver over the catalog. searcher may be nil,
// in which case search terms match against cached catalog names only.
func NewResolver(catalog *Catalog, searcher Searcher) *Resolver {
	return &Resolver{catalog: catalog, searcher: searcher}
}

type strategyFunc func(ctx context.Context, q Query, templates []imgflip.Template) (*ResolvedTemplate, error)

// Resolve picks one template. An explicitly named template that has no
// exact match fails with KindTemplateNotFound rather than silently
// substituting; otherwise resolution always terminates in a usable
// template as long as the catalog is non-empty.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*ResolvedTemplate, error) {
	templates, err := r.catalog.Templates(ctx)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, imgflip.NewError(imgflip.KindCatalogEmpty, "provider catalog contains no templates")
	}

	strategies := []strategyFunc{
		r.resolveNamed,
		r.resolveSearch,
		r.resolvePopular,
	}

	for _, strategy := range strategies {
		resolved, err := strategy(ctx, q, templates)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			logger.Debug("Resolved template %q via %s", resolved.Template.Name, resolved.Source)
			return resolved, nil
		}
	}

	// resolvePopular always matches a non-empty catalog
	return nil, imgflip.NewError(imgflip.KindCatalogEmpty, "resolution exhausted all strategies")
}

// resolveNamed handles explicit template requests with a
// case-insensitive exact name match.
func (r *Resolver) resolveNamed(ctx context.Context, q Query, templates []imgflip.Template) (*ResolvedTemplate, error) {
	if q.NamedTemplate == "" {
		return nil, nil
	}

	want := strings.ToLower(strings.TrimSpace(q.NamedTemplate))
	for _, tpl := range templates {
		if strings.ToLower(tpl.Name) == want {
			return &ResolvedTemplate{Template: tpl, Source: ExactNameMatch}, nil
		}
	}

	return nil, imgflip.Errorf(imgflip.KindTemplateNotFound, "no template named %q", q.NamedTemplate)
}

// resolveSearch tries each term in order; the first term producing any
// match wins and later terms are never consulted. When a premium
// searcher is configured it is asked first; a failing search degrades
// to catalog-name matching rather than aborting resolution.
func (r *Resolver) resolveSearch(ctx context.Context, q Query, templates []imgflip.Template) (*ResolvedTemplate, error) {
	for _, term := range q.SearchTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		if r.searcher != nil {
			results, err := r.searcher.SearchMemes(ctx, term, false)
			if err != nil {
				logger.Warn("Premium search for %q failed, matching against catalog: %v", term, err)
			} else if len(results) > 0 {
				return &ResolvedTemplate{Template: results[0], Source: SearchMatch, MatchedTerm: term}, nil
			}
		}

		if tpl, ok := bestCatalogMatch(templates, term); ok {
			return &ResolvedTemplate{Template: tpl, Source: SearchMatch, MatchedTerm: term}, nil
		}
	}

	return nil, nil
}

// resolvePopular falls back to the single most popular template.
func (r *Resolver) resolvePopular(ctx context.Context, q Query, templates []imgflip.Template) (*ResolvedTemplate, error) {
	best := templates[0]
	for _, tpl := range templates[1:] {
		// Strict comparison keeps catalog order as the tie-break
		if tpl.PopularityRank < best.PopularityRank {
			best = tpl
		}
	}
	return &ResolvedTemplate{Template: best, Source: PopularityFallback}, nil
}

// bestCatalogMatch finds the most popular template whose name matches
// the term. Ties break by catalog order via strict rank comparison.
func bestCatalogMatch(templates []imgflip.Template, term string) (imgflip.Template, bool) {
	var best imgflip.Template
	found := false
	for _, tpl := range templates {
		if !nameMatches(tpl.Name, term) {
			continue
		}
		if !found || tpl.PopularityRank < best.PopularityRank {
			best = tpl
			found = true
		}
	}
	return best, found
}

// FilterByTerm returns the templates matching a term, ordered most
// popular first with catalog order breaking ties. Used by the search
// tool's catalog fallback when premium search is unavailable.
func FilterByTerm(templates []imgflip.Template, term string) []imgflip.Template {
	var matches []imgflip.Template
	for _, tpl := range templates {
		if nameMatches(tpl.Name, term) {
			matches = append(matches, tpl)
		}
	}
	// Insertion sort keeps the original order for equal ranks
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].PopularityRank < matches[j-1].PopularityRank; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	return matches
}

// nameMatches applies the substring/token-overlap test: the whole term
// as a substring of the name, or any distinctive token of the term
// appearing in the name.
func nameMatches(name, term string) bool {
	name = strings.ToLower(name)
	term = strings.ToLower(term)

	if strings.Contains(name, term) {
		return true
	}

	for _, token := range strings.Fields(term) {
		if len(token) < 3 || stopwords[token] {
			continue
		}
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}
