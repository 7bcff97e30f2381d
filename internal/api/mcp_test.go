// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMCPImpl = &mcp.Implementation{Name: "policy-engine-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := NewMCPServer(newTestService(t, Options{}), "test")

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, error) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text, result.GetError()
}

func TestMCPTools(t *testing.T) {
	session := mcpSession(t)
	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"lookup_clause", "get_policy", "list_catalog", "search_text"}, names)
}

func TestMCPLookupClause(t *testing.T) {
	session := mcpSession(t)
	text, err := callTool(t, session, "lookup_clause", map[string]any{"title": "反洗钱法", "item": "第三条第二款"})
	require.NoError(t, err)

	var resp ClauseResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "金融机构应当建立健全客户身份识别制度。", resp.Results[0].ClauseText)
}

func TestMCPGetPolicy(t *testing.T) {
	session := mcpSession(t)
	text, err := callTool(t, session, "get_policy", map[string]any{"title": "中华人民共和国反洗钱法", "include": []string{"text"}})
	require.NoError(t, err)

	var resp PolicyResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, amlText, resp.Text)

	_, err = callTool(t, session, "get_policy", map[string]any{"title": "客户尽职调查指引"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title_ambiguous")
}

func TestMCPListCatalogAndSearch(t *testing.T) {
	session := mcpSession(t)

	text, err := callTool(t, session, "list_catalog", map[string]any{"scope": "all"})
	require.NoError(t, err)
	var cat CatalogResponse
	require.NoError(t, json.Unmarshal([]byte(text), &cat))
	assert.Equal(t, 6, cat.Count)

	text, err = callTool(t, session, "search_text", map[string]any{
		"query":       "洗钱",
		"top_k":       1,
		"meta_filter": map[string]any{"issuing_authority": "中国人民银行"},
	})
	require.NoError(t, err)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "金融机构反洗钱规定", resp.Results[0].Title)
}

func TestMCPInvalidArguments(t *testing.T) {
	session := mcpSession(t)
	_, err := callTool(t, session, "search_text", map[string]any{"query": ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}
