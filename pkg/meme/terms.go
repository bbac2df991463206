package meme

import (
	"context"
	"strings"
	"unicode"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// TermGenerator produces ordered search phrases for a free-text
// concept, most specific first so resolution can try precise matches
// before generic ones. A successful call never returns an empty list;
// the concept itself is always a valid final fallback term.
type TermGenerator interface {
	GenerateTerms(ctx context.Context, concept string, maxTerms int) ([]string, error)
}

// stopwords are filler words removed before term extraction. The
// provider's search only matches words that actually appear in template
// names, so connective tissue never helps.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "of": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "with": true, "from": true, "by": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "it": true, "its": true, "this": true,
	"that": true, "then": true, "than": true, "when": true, "while": true,
	"after": true, "before": true, "me": true, "my": true, "i": true,
	"you": true, "your": true, "we": true, "our": true, "they": true,
	"their": true, "he": true, "she": true, "his": true, "her": true,
	"who": true, "what": true, "how": true, "so": true, "very": true,
	"just": true, "like": true, "about": true, "into": true, "over": true,
	"finds": true, "find": true, "gets": true, "get": true, "has": true,
	"have": true, "had": true, "do": true, "does": true, "did": true,
}

// HeuristicTermGenerator derives search terms from the concept text
// alone, without any external call. It cannot fail and serves as the
// default when no model-assisted generator is configured.
type HeuristicTermGenerator struct{}

// NewHeuristicTermGenerator creates the default term generator.
func NewHeuristicTermGenerator() *HeuristicTermGenerator {
	return &HeuristicTermGenerator{}
}

// GenerateTerms extracts keywords from the concept and orders candidate
// terms from most specific (keyword pairs) to most generic (single
// keywords). The trimmed concept itself is the fallback when nothing
// survives keyword extraction.
func (g *HeuristicTermGenerator) GenerateTerms(ctx context.Context, concept string, maxTerms int) ([]string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, imgflip.NewError(imgflip.KindGenerationFailed, "concept is empty")
	}
	if maxTerms < 1 {
		maxTerms = 1
	}

	keywords := extractKeywords(concept)

	var terms []string
	seen := map[string]bool{}
	add := func(term string) {
		if term == "" || seen[term] || len(terms) >= maxTerms {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	// Adjacent keyword pairs carry the most context
	for i := 0; i+1 < len(keywords) && len(terms) < maxTerms-1; i++ {
		add(keywords[i] + " " + keywords[i+1])
	}

	// Longer single keywords tend to be more distinctive
	for _, kw := range sortByLengthDesc(keywords) {
		add(kw)
	}

	if len(terms) == 0 {
		add(strings.ToLower(concept))
	}

	return terms, nil
}

// extractKeywords lowercases, strips punctuation and drops stopwords
// and very short tokens, preserving textual order.
func extractKeywords(concept string) []string {
	fields := strings.FieldsFunc(strings.ToLower(concept), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var keywords []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

// sortByLengthDesc returns a copy ordered longest first; equal lengths
// keep their textual order so output stays deterministic.
func sortByLengthDesc(words []string) []string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}
