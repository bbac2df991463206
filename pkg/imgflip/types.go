package imgflip

import (
	"encoding/json"
	"fmt"
)

// Template is one meme template as reported by the provider. Immutable
// once fetched; owned by the catalog cache for the process lifetime.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	BoxCount int    `json:"box_count"`

	// PopularityRank is the template's position in the provider's
	// popular listing, lower meaning more popular. Used as the
	// deterministic tie-break during resolution.
	PopularityRank int `json:"popularity_rank"`
}

// MemeResult is the terminal artifact of a successful render.
type MemeResult struct {
	ImageURL   string `json:"image_url"`
	PageURL    string `json:"page_url"`
	TemplateID string `json:"template_id_used"`
}

// The provider speaks a loosely-typed envelope:
//
//	{"success": true, "data": {...}}
//	{"success": false, "error_message": "..."}
//
// Everything is parsed into strict types here at the boundary; malformed
// payloads become KindProviderError rather than propagating untyped data
// inward.

type apiEnvelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	ErrorMessage string          `json:"error_message"`
}

// wireTemplate tolerates the number/string looseness of the provider's
// template objects before conversion into Template.
type wireTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

type memesData struct {
	Memes []wireTemplate `json:"memes"`
}

type memeData struct {
	Meme wireTemplate `json:"meme"`
}

type captionData struct {
	URL     string `json:"url"`
	PageURL string `json:"page_url"`
}

func (w wireTemplate) toTemplate(rank int) (Template, error) {
	if w.ID == "" {
		return Template{}, fmt.Errorf("template missing id")
	}
	if w.BoxCount <= 0 {
		return Template{}, fmt.Errorf("template %s (%s) has non-positive box_count %d", w.ID, w.Name, w.BoxCount)
	}
	return Template{
		ID:             w.ID,
		Name:           w.Name,
		URL:            w.URL,
		Width:          w.Width,
		Height:         w.Height,
		BoxCount:       w.BoxCount,
		PopularityRank: rank,
	}, nil
}
