// Package mcptools exposes extraction and the component history as Model
// Context Protocol tools, so an agent can capture page regions and read the
// generated code.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	markupextractor "github.com/kataras/markup-extractor"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/history"
	"github.com/kataras/markup-extractor/pkg/service"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(svc *service.Service) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "markup-extractor", Version: markupextractor.Version}, nil)
	Register(srv, svc)
	return srv
}

// Register adds the markup_* tools to srv.
func Register(srv *mcp.Server, svc *service.Service) {
	registerExtract(srv, svc)
	registerComponents(srv, svc)
	registerArtifact(srv, svc)
	registerFormats(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool registers a tool whose arguments decode into Req. Endpoint
// errors are reported as tool errors, the result is returned as JSON text.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, endpoint func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if args := req.Params.Arguments; len(args) > 0 {
			if err := json.Unmarshal(args, &r); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		resp, err := endpoint(ctx, &r)
		if err != nil {
			return toolError(err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

// --- markup_extract ---

// ExtractResult is the markup_extract response: the stored id and the
// download name of every generated export.
type ExtractResult struct {
	ID       string            `json:"id"`
	Element  string            `json:"element"`
	URL      string            `json:"url,omitempty"`
	Title    string            `json:"title,omitempty"`
	Text     string            `json:"text,omitempty"`
	Files    map[string]string `json:"files"`
	Warnings []string          `json:"warnings,omitempty"`
}

func registerExtract(srv *mcp.Server, svc *service.Service) {
	tool := &mcp.Tool{
		Name:        "markup_extract",
		Description: "Extract an element of an HTML page with its styles and store it. Pass the page as html or a url to download, a CSS selector and optional picker keys (up, down, left, right) to move from the selected element.",
		InputSchema: inputSchema(map[string]any{
			"html":                   map[string]any{"type": "string", "description": "Page markup"},
			"url":                    map[string]any{"type": "string", "description": "Page URL, downloaded when html is empty and used to resolve links"},
			"selector":               map[string]any{"type": "string", "description": "CSS selector of the element, default body"},
			"walk":                   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Picker keys replayed from the selected element"},
			"formats":                map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": formatNames()}, "description": "Exports to generate, default all"},
			"preserveUtilityClasses": map[string]any{"type": "boolean"},
			"includeInlineStyles":    map[string]any{"type": "boolean"},
			"componentName":          map[string]any{"type": "string", "description": "JSX component name"},
		}, nil),
	}

	addTool(srv, tool, func(ctx context.Context, req *service.ExtractRequest) (any, error) {
		c, err := svc.Extract(ctx, *req)
		if err != nil {
			return nil, err
		}
		files := make(map[string]string, len(c.Result.Artifacts))
		for f, a := range c.Result.Artifacts {
			files[string(f)] = a.Filename(c.Time())
		}
		return ExtractResult{
			ID:       c.ID,
			Element:  c.Element,
			URL:      c.URL,
			Title:    c.Title,
			Text:     c.Result.Element.Text,
			Files:    files,
			Warnings: c.Result.Warnings,
		}, nil
	})
}

// --- markup_components ---

type componentsReq struct {
	Limit int  `json:"limit"`
	Saved bool `json:"saved"`
}

func registerComponents(srv *mcp.Server, svc *service.Service) {
	tool := &mcp.Tool{
		Name:        "markup_components",
		Description: "List stored components, newest first, or the saved collection.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum number of entries, 0 for all"},
			"saved": map[string]any{"type": "boolean", "description": "List the saved collection instead"},
		}, nil),
	}

	addTool(srv, tool, func(ctx context.Context, req *componentsReq) (any, error) {
		var (
			entries []history.Entry
			err     error
		)
		if req.Saved {
			entries, err = svc.Store().ListSaved(ctx)
		} else {
			entries, err = svc.Store().List(ctx, req.Limit)
		}
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		return entries, nil
	})
}

// --- markup_artifact ---

type artifactReq struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Part   string `json:"part"`
}

func registerArtifact(srv *mcp.Server, svc *service.Service) {
	tool := &mcp.Tool{
		Name:        "markup_artifact",
		Description: "Return the text of one export of a stored component.",
		InputSchema: inputSchema(map[string]any{
			"id":     map[string]any{"type": "string", "description": "Component id"},
			"format": map[string]any{"type": "string", "enum": formatNames()},
			"part":   map[string]any{"type": "string", "enum": []string{"primary", "auxiliary", "fragment"}, "description": "Default primary"},
		}, []string{"id", "format"}),
	}

	addTool(srv, tool, func(ctx context.Context, req *artifactReq) (any, error) {
		format, err := generator.ParseFormat(req.Format)
		if err != nil {
			return nil, err
		}
		name, text, err := svc.Artifact(ctx, req.ID, format, req.Part)
		if err != nil {
			return nil, err
		}
		return map[string]string{"filename": name, "text": text}, nil
	})
}

// --- markup_formats ---

func registerFormats(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "markup_formats",
		Description: "List the export formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	addTool(srv, tool, func(context.Context, *struct{}) (any, error) {
		out := make([]map[string]string, 0, len(generator.Formats))
		for _, f := range generator.Formats {
			out = append(out, map[string]string{"name": string(f), "label": f.Label()})
		}
		return map[string]any{"formats": out}, nil
	})
}

func formatNames() []string {
	names := make([]string, 0, len(generator.Formats))
	for _, f := range generator.Formats {
		names = append(names, string(f))
	}
	return names
}
