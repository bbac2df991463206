package prompts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// PromptRegistry manages the reusable prompts served over prompts/list
// and prompts/get. Prompts live in memory; the server keeps no on-disk
// state.
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]*protocol.Prompt
}

var (
	globalRegistry *PromptRegistry
	once           sync.Once
)

// GetGlobalRegistry returns the process-wide prompt registry, creating
// it with the built-in prompts on first use.
func GetGlobalRegistry() *PromptRegistry {
	once.Do(func() {
		globalRegistry = NewPromptRegistry()
	})
	return globalRegistry
}

// NewPromptRegistry creates a registry seeded with the built-in prompts.
func NewPromptRegistry() *PromptRegistry {
	registry := &PromptRegistry{
		prompts: make(map[string]*protocol.Prompt),
	}
	for _, prompt := range builtinPrompts() {
		registry.prompts[prompt.ID] = prompt
	}
	return registry
}

// GetPrompt retrieves a prompt by ID
func (pr *PromptRegistry) GetPrompt(id string) (*protocol.Prompt, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	prompt, ok := pr.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	return prompt, nil
}

// ListPrompts returns all registered prompts in stable ID order
func (pr *PromptRegistry) ListPrompts() ([]protocol.Prompt, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	ids := make([]string, 0, len(pr.prompts))
	for id := range pr.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	prompts := make([]protocol.Prompt, 0, len(ids))
	for _, id := range ids {
		prompts = append(prompts, *pr.prompts[id])
	}
	return prompts, nil
}

func builtinPrompts() []*protocol.Prompt {
	return []*protocol.Prompt{
		{
			ID:          "imgflip_create_meme",
			Description: "Create a meme using a named template and caption text",
			Content:     "Create a meme using the '{{template_name}}' template with the following text boxes:\n{{text_boxes}}",
			Variables: map[string]protocol.PromptArgument{
				"template_name": {
					Description: "The name of the meme template to use",
					Required:    true,
				},
				"text_boxes": {
					Description: "The text to display in each box (comma-separated)",
					Required:    true,
				},
			},
		},
		{
			ID:          "imgflip_create_from_description",
			Description: "Create a meme from a description of the meme concept",
			Content: "I want to create a meme that captures this idea or concept: {{description}}\n\n" +
				"Please analyze this concept and determine appropriate meme templates that would work well for it. " +
				"Then select the best one and generate suitable captions.",
			Variables: map[string]protocol.PromptArgument{
				"description": {
					Description: "A description of the meme concept or idea",
					Required:    true,
				},
			},
		},
	}
}
