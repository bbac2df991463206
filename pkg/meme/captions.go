package meme

import (
	"context"
	"strings"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

// CaptionMapper turns a concept into exactly boxCount caption strings
// aligned to the template's box order. A length mismatch is a hard
// error; captions are never silently truncated or padded.
type CaptionMapper interface {
	MapCaptions(ctx context.Context, concept string, boxCount int) ([]string, error)
}

// punchlineMarkers split a concept into setup and payoff for two-box
// templates. Checked in order, first hit wins.
var punchlineMarkers = []string{" but ", " and then ", " then ", " so ", " until ", " after "}

// HeuristicCaptionMapper segments the concept text itself, without any
// external call. Default when no model-assisted mapper is configured.
type HeuristicCaptionMapper struct{}

// NewHeuristicCaptionMapper creates the default caption mapper.
func NewHeuristicCaptionMapper() *HeuristicCaptionMapper {
	return &HeuristicCaptionMapper{}
}

// MapCaptions produces one caption per box. A single box gets a
// summarized concept; two boxes get a setup/punchline split when the
// concept has a natural pivot; more boxes get contiguous even segments.
func (m *HeuristicCaptionMapper) MapCaptions(ctx context.Context, concept string, boxCount int) ([]string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, imgflip.NewError(imgflip.KindCaptionGenerationFailed, "concept is empty")
	}
	if boxCount < 1 {
		return nil, imgflip.Errorf(imgflip.KindCaptionGenerationFailed, "invalid box count %d", boxCount)
	}

	if boxCount == 1 {
		return []string{summarize(concept)}, nil
	}

	if boxCount == 2 {
		if setup, punchline, ok := splitAtMarker(concept); ok {
			return []string{setup, punchline}, nil
		}
	}

	words := strings.Fields(concept)
	if len(words) < boxCount {
		return nil, imgflip.Errorf(imgflip.KindCaptionGenerationFailed,
			"concept too short to fill %d caption boxes", boxCount)
	}

	return segmentWords(words, boxCount), nil
}

// summarize caps the caption at a readable length, cutting on a word
// boundary.
func summarize(concept string) string {
	const maxLen = 100
	if len(concept) <= maxLen {
		return concept
	}
	cut := strings.LastIndex(concept[:maxLen], " ")
	if cut <= 0 {
		cut = maxLen
	}
	return concept[:cut] + "..."
}

// splitAtMarker divides the concept at its first punchline marker.
func splitAtMarker(concept string) (string, string, bool) {
	lower := strings.ToLower(concept)
	for _, marker := range punchlineMarkers {
		idx := strings.Index(lower, marker)
		if idx <= 0 {
			continue
		}
		setup := strings.TrimSpace(concept[:idx])
		punchline := strings.TrimSpace(concept[idx:])
		if setup != "" && punchline != "" {
			return setup, punchline, true
		}
	}
	return "", "", false
}

// segmentWords distributes words into n contiguous non-empty chunks.
// Earlier chunks take the remainder so box order follows reading order.
func segmentWords(words []string, n int) []string {
	captions := make([]string, 0, n)
	size := len(words) / n
	extra := len(words) % n

	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		captions = append(captions, strings.Join(words[start:end], " "))
		start = end
	}
	return captions
}
