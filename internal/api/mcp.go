// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer creates an MCP server exposing svc's operations as tools.
func NewMCPServer(svc *Service, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "policy-engine", Version: version}, nil)
	svc.RegisterMCP(srv)
	return srv
}

// RegisterMCP registers lookup_clause, get_policy, list_catalog and
// search_text on srv.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	addTool(srv, &mcp.Tool{
		Name: "lookup_clause",
		Description: "Look up the text of cited clauses in Chinese laws and regulations. " +
			"Pass either title and item (e.g. title 反洗钱法, item 第三条第二款) or key with a full " +
			"citation such as 《中华人民共和国反洗钱法》第三条、第五条.",
		InputSchema: inputSchema(map[string]any{
			"title": map[string]any{"type": "string", "description": "Law or regulation title, full or abbreviated"},
			"item":  map[string]any{"type": "string", "description": "Clause expression, e.g. 第八条第三款"},
			"key":   map[string]any{"type": "string", "description": "Free-form citation, may name several laws"},
			"keys":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Several free-form citations"},
		}, nil),
	}, s.LookupClause)

	addTool(srv, &mcp.Tool{
		Name:        "get_policy",
		Description: "Fetch one policy by id or title. include selects meta, outline, text or all (default meta).",
		InputSchema: inputSchema(map[string]any{
			"id":      map[string]any{"type": "string", "description": "Policy id"},
			"title":   map[string]any{"type": "string", "description": "Policy title, full or abbreviated"},
			"include": map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []string{"meta", "outline", "text", "all"}}},
		}, nil),
	}, s.GetPolicy)

	addTool(srv, &mcp.Tool{
		Name:        "list_catalog",
		Description: "List indexed policies. scope default lists the curated set; all lists every policy.",
		InputSchema: inputSchema(map[string]any{
			"scope": map[string]any{"type": "string", "enum": []string{"default", "all"}},
		}, nil),
	}, s.Catalog)

	addTool(srv, &mcp.Tool{
		Name: "search_text",
		Description: "Full-text search over policy titles and bodies. meta_filter may restrict " +
			"issuing_authority, status, law_level and date_range {from, to} (YYYY-MM-DD).",
		InputSchema: inputSchema(map[string]any{
			"query":       map[string]any{"type": "string", "description": "Search terms separated by spaces"},
			"top_k":       map[string]any{"type": "integer", "minimum": 1, "description": "Maximum number of hits"},
			"meta_filter": map[string]any{"type": "object", "description": "Metadata filter"},
		}, []string{"query"}),
	}, s.Search)
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

// addTool registers an operation as a tool. Argument and operation errors
// are returned as tool errors so the calling model can correct itself.
func addTool[Req, Resp any](srv *mcp.Server, tool *mcp.Tool, op func(context.Context, Req) (*Resp, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		out, err := op(ctx, in)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}
