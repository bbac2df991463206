package meme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
)

const searchTermPrompt = `You turn meme concepts into search terms for the Imgflip template search.
IMPORTANT: the search is very basic and only matches words that appear in actual template names.
It does NOT understand complex queries, concepts, or smart search.
Provide extremely simple search terms likely to be part of template names:
- Single words when possible (like "confused", "drake", "cat", "distracted")
- Common meme character names (like "doge", "batman", "pikachu")
- Well-known meme format names (like "drake", "change my mind", "distracted")
DO NOT provide phrases, complete sentences, or conceptual terms that would not appear in a template name.
Examples:
- For "when your code finally works but you don't know why": success, confused, math
- For "me explaining something complex to my parents": explain, pointing, confused
Order the terms from most specific to most generic.
Respond with ONLY the search terms, separated by commas, no additional text.`

const captionPrompt = `You write meme captions.
Given a meme concept and a number of text boxes, produce one caption per box.
Box order matters: box 1 is the setup or top text, the last box is the punchline or bottom text.
Captions must be short, punchy, and read naturally in template order.
Respond with ONLY the captions, one per line, no numbering, no additional text.`

// GeneratorOptions configures the chat completion backend shared by the
// model-assisted term generator and caption mapper.
type GeneratorOptions struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// chatClient calls an OpenAI-compatible chat completions endpoint.
type chatClient struct {
	http     *resty.Client
	model    string
	endpoint string
}

func newChatClient(opts GeneratorOptions) *chatClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	http := resty.New()
	http.SetHeader("Authorization", "Bearer "+opts.APIKey)
	http.SetHeader("Content-Type", "application/json")
	http.SetTimeout(timeout)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &chatClient{
		http:     http,
		model:    opts.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *chatClient) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat completion call failed: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(httpResp.Body(), &resp); err != nil {
		return "", fmt.Errorf("invalid chat completion response: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("chat completion error: %s", resp.Error.Message)
		}
		return "", fmt.Errorf("chat completion error: status %d", httpResp.StatusCode())
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// LLMTermGenerator asks a language model for search terms. Fails with
// KindGenerationFailed when the model endpoint is unavailable.
type LLMTermGenerator struct {
	chat *chatClient
}

// NewLLMTermGenerator creates a model-assisted term generator.
func NewLLMTermGenerator(opts GeneratorOptions) *LLMTermGenerator {
	return &LLMTermGenerator{chat: newChatClient(opts)}
}

func (g *LLMTermGenerator) GenerateTerms(ctx context.Context, concept string, maxTerms int) ([]string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, imgflip.NewError(imgflip.KindGenerationFailed, "concept is empty")
	}
	if maxTerms < 1 {
		maxTerms = 1
	}

	user := fmt.Sprintf("Concept: %s\nProvide 1-%d search terms.", concept, maxTerms)
	raw, err := g.chat.complete(ctx, searchTermPrompt, user)
	if err != nil {
		return nil, imgflip.WrapError(imgflip.KindGenerationFailed, "term generation unavailable", err)
	}

	var terms []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" || seen[term] || len(terms) >= maxTerms {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}

	// The model sometimes answers with prose; the concept is always a
	// usable term of last resort.
	if len(terms) == 0 {
		terms = append(terms, strings.ToLower(concept))
	}

	return terms, nil
}

// LLMCaptionMapper asks a language model for box captions. A wrong
// caption count triggers one retry with an explicit count constraint
// before failing with KindCaptionGenerationFailed.
type LLMCaptionMapper struct {
	chat *chatClient
}

// NewLLMCaptionMapper creates a model-assisted caption mapper.
func NewLLMCaptionMapper(opts GeneratorOptions) *LLMCaptionMapper {
	return &LLMCaptionMapper{chat: newChatClient(opts)}
}

func (m *LLMCaptionMapper) MapCaptions(ctx context.Context, concept string, boxCount int) ([]string, error) {
	if boxCount < 1 {
		return nil, imgflip.Errorf(imgflip.KindCaptionGenerationFailed, "invalid box count %d", boxCount)
	}

	user := fmt.Sprintf("Concept: %s\nText boxes: %d", concept, boxCount)
	captions, err := m.request(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(captions) == boxCount {
		return captions, nil
	}

	// Retry once, spelling out the count constraint
	user = fmt.Sprintf("Concept: %s\nText boxes: %d\nYour previous answer had %d captions. You MUST respond with exactly %d lines, one caption per line.",
		concept, boxCount, len(captions), boxCount)
	captions, err = m.request(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(captions) != boxCount {
		return nil, imgflip.Errorf(imgflip.KindCaptionGenerationFailed,
			"model produced %d captions for a %d-box template", len(captions), boxCount)
	}

	return captions, nil
}

func (m *LLMCaptionMapper) request(ctx context.Context, user string) ([]string, error) {
	raw, err := m.chat.complete(ctx, captionPrompt, user)
	if err != nil {
		return nil, imgflip.WrapError(imgflip.KindCaptionGenerationFailed, "caption generation unavailable", err)
	}

	var captions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		captions = append(captions, line)
	}
	return captions, nil
}
