package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jafranjemal/aavanamkit"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// RegisterDefaultTools adds the document tools, backed by e, to the server.
func RegisterDefaultTools(s *Server, e *aavanamkit.Engine) {
	s.AddTool(generateDocumentTool(e))
	s.AddTool(layoutTableTool(e))
}

func templateSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Designer template: pageSettings (size, orientation, mode, margins) and pages, each with elements of type Text, Image, Shape, Barcode or Table",
	}
}

func outputTypeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"pdf", "docx", "html"},
		"description": "Output format",
	}
}

func generateDocumentTool(e *aavanamkit.Engine) Tool {
	return Tool{
		Name:        "generate_document",
		Description: "Render a document template with runtime data as PDF, DOCX or HTML. Data bindings, conditional visibility and table pagination are applied. Returns the document as base64, or writes it to outputPath.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema(),
				"data": map[string]interface{}{
					"description": "Runtime data the template's bindings and conditions read from; use {} when nothing is bound",
				},
				"outputType": outputTypeSchema(),
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Optional file path to save the document. If omitted, returns base64.",
				},
			},
			"required": []string{"template", "data", "outputType"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return handleGenerateDocument(ctx, e, args)
		},
	}
}

func handleGenerateDocument(ctx context.Context, e *aavanamkit.Engine, args map[string]interface{}) (ToolResult, error) {
	req, err := requestFrom(args)
	if err != nil {
		return ToolResult{}, err
	}
	res, err := e.Generate(ctx, req)
	if err != nil {
		return ToolResult{}, err
	}

	var summary string
	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.WriteFile(outputPath, res.Data, 0644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		summary = fmt.Sprintf("%s created: %s (%d pages, %d bytes)", strings.ToUpper(string(res.Format)), outputPath, res.Pages, len(res.Data))
	} else {
		summary = fmt.Sprintf("%s created (%d pages, %d bytes, %s). Base64 data:\n%s",
			strings.ToUpper(string(res.Format)), res.Pages, len(res.Data), res.ContentType(),
			base64.StdEncoding.EncodeToString(res.Data))
	}

	content := []ContentBlock{{Type: "text", Text: summary}}
	if w := warningText(res.Warnings); w != "" {
		content = append(content, ContentBlock{Type: "text", Text: w})
	}
	return ToolResult{Content: content}, nil
}

func layoutTableTool(e *aavanamkit.Engine) Tool {
	return Tool{
		Name:        "layout_table",
		Description: "Preview how a template's table paginates for the given data without rendering. Returns the page count and, per page, the data row indices and their height in points.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema(),
				"data": map[string]interface{}{
					"description": "Runtime data the template's bindings and conditions read from; use {} when nothing is bound",
				},
				"outputType": outputTypeSchema(),
			},
			"required": []string{"template", "data"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return handleLayoutTable(ctx, e, args)
		},
	}
}

func handleLayoutTable(ctx context.Context, e *aavanamkit.Engine, args map[string]interface{}) (ToolResult, error) {
	if _, ok := args["outputType"]; !ok {
		withDefault := map[string]interface{}{"outputType": "pdf"}
		for k, v := range args {
			withDefault[k] = v
		}
		args = withDefault
	}
	req, err := requestFrom(args)
	if err != nil {
		return ToolResult{}, err
	}
	plan, err := e.Layout(ctx, req)
	if err != nil {
		return ToolResult{}, err
	}

	jsonBytes, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding plan: %w", err)
	}
	content := []ContentBlock{{Type: "text", Text: string(jsonBytes)}}
	if w := warningText(plan.Warnings); w != "" {
		content = append(content, ContentBlock{Type: "text", Text: w})
	}
	return ToolResult{Content: content}, nil
}

// requestFrom decodes the template, data and outputType arguments.
func requestFrom(args map[string]interface{}) (aavanamkit.Request, error) {
	templateData, ok := args["template"]
	if !ok {
		return aavanamkit.Request{}, fmt.Errorf("missing 'template' argument")
	}
	outputType, ok := args["outputType"].(string)
	if !ok {
		return aavanamkit.Request{}, fmt.Errorf("missing 'outputType' argument")
	}

	jsonBytes, err := json.Marshal(templateData)
	if err != nil {
		return aavanamkit.Request{}, fmt.Errorf("encoding template: %w", err)
	}
	tpl, err := doctpl.Parse(jsonBytes)
	if err != nil {
		return aavanamkit.Request{}, err
	}
	return aavanamkit.Request{Template: tpl, Data: args["data"], OutputType: outputType}, nil
}

func warningText(ws []aavanamkit.Warning) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d warning(s):", len(ws))
	for _, w := range ws {
		fmt.Fprintf(&b, "\n- %v", w)
	}
	return b.String()
}
