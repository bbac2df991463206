package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryServesBuiltins(t *testing.T) {
	registry := NewPromptRegistry()

	prompt, err := registry.GetPrompt("imgflip_create_from_description")
	require.NoError(t, err)
	assert.Contains(t, prompt.Content, "{{description}}")
	assert.Contains(t, prompt.Variables, "description")

	prompt, err = registry.GetPrompt("imgflip_create_meme")
	require.NoError(t, err)
	assert.Contains(t, prompt.Content, "{{template_name}}")
}

func TestRegistryUnknownPrompt(t *testing.T) {
	registry := NewPromptRegistry()

	_, err := registry.GetPrompt("does_not_exist")
	require.Error(t, err)
}

func TestListPromptsSortedByID(t *testing.T) {
	registry := NewPromptRegistry()

	prompts, err := registry.ListPrompts()
	require.NoError(t, err)
	require.NotEmpty(t, prompts)

	for i := 1; i < len(prompts); i++ {
		assert.LessOrEqual(t, prompts[i-1].ID, prompts[i].ID)
	}
}

func TestGlobalRegistryIsSingleton(t *testing.T) {
	assert.Same(t, GetGlobalRegistry(), GetGlobalRegistry())
}
