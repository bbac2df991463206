package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

// TemplateInfoTool returns the template info tool definition
func (t *Toolkit) TemplateInfoTool() protocol.Tool {
	return protocol.Tool{
		Name: "imgflip_get_template_info",
		Description: `
		Gets information about a meme template, most importantly the
		box_count: the number of text captions the template requires.
		Identify the template either by its id or by its exact name.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"template_id": {
					Type:        "string",
					Description: "ID of the meme template",
				},
				"name": {
					Type:        "string",
					Description: "Exact template name, used when no id is given",
				},
			},
			Required: []string{},
		},
	}
}

// HandleTemplateInfo handles the template info tool invocation
func (t *Toolkit) HandleTemplateInfo(params any) (any, error) {
	paramsMap, err := paramsAsMap(params)
	if err != nil {
		return nil, err
	}

	templateID := optionalStringParam(paramsMap, "template_id")
	name := optionalStringParam(paramsMap, "name")
	if templateID == "" && name == "" {
		return nil, fmt.Errorf("either template_id or name is required")
	}

	tpl, err := t.findTemplate(context.Background(), templateID, name)
	if err != nil {
		return nil, err
	}

	result := templateToMap(*tpl)
	result["guidance"] = boxGuidance(tpl.BoxCount)
	return result, nil
}

// findTemplate checks the cached catalog first and only then asks the
// premium per-template endpoint.
func (t *Toolkit) findTemplate(ctx context.Context, templateID, name string) (*imgflip.Template, error) {
	if templateID != "" {
		tpl, ok, err := t.catalog.Lookup(ctx, templateID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &tpl, nil
		}
		if t.client.HasCredentials() {
			return t.client.GetMeme(ctx, templateID)
		}
		return nil, imgflip.Errorf(imgflip.KindTemplateNotFound, "no template with id %q in the catalog", templateID)
	}

	templates, err := t.catalog.Templates(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, tpl := range templates {
		if strings.ToLower(tpl.Name) == want {
			return &tpl, nil
		}
	}
	return nil, imgflip.Errorf(imgflip.KindTemplateNotFound, "no template named %q", name)
}

func boxGuidance(boxCount int) string {
	guidance := fmt.Sprintf("This template requires %d text boxes.", boxCount)
	switch {
	case boxCount == 1:
		guidance += " This template has only one text area."
	case boxCount == 2:
		guidance += " This is a standard meme template with top and bottom text."
	case boxCount > 2:
		guidance += fmt.Sprintf(" You'll need to provide %d different text strings for this template.", boxCount)
	}
	return guidance
}
