package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func clearGeminiEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GEMINI_API_KEY", "FOLIO_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}
}

func newSeedApp(t *testing.T) *App {
	t.Helper()
	clearGeminiEnv(t)
	a, err := newApp(context.Background(), common.NewDefaultConfig(), common.NewSilentLogger(), time.Now())
	require.NoError(t, err)
	return a
}

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var toolsResult mcpgo.ListToolsResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolsResult))
	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the first text block.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) (string, bool) {
	t.Helper()

	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(paramsJSON) + `}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var raw struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(resultJSON, &raw))
	require.NotEmpty(t, raw.Content)
	return raw.Content[0].Text, raw.IsError
}

func TestNewApp_SeedPortfolioWithoutKey(t *testing.T) {
	a := newSeedApp(t)

	assert.Equal(t, 15, a.Store.Len())
	assert.Nil(t, a.GeminiClient)
	assert.Equal(t, "heuristic", a.InsightSource())

	n, err := a.PortfolioService.GetInsights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.InsightSourceHeuristic, n.Source)
}

func TestNewApp_WithKeyBuildsGeminiClient(t *testing.T) {
	clearGeminiEnv(t)
	cfg := common.NewDefaultConfig()
	cfg.Clients.Gemini.APIKey = "test-gemini-key"
	cfg.Clients.Gemini.Model = "gemini-test"

	a, err := newApp(context.Background(), cfg, common.NewSilentLogger(), time.Now())
	require.NoError(t, err)
	require.NotNil(t, a.GeminiClient)
	assert.Equal(t, "gemini (gemini-test)", a.InsightSource())
}

func TestNewApp_InvalidHoldingsAbortStartup(t *testing.T) {
	clearGeminiEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	content := `
[[holdings]]
symbol = "SBIN"
name = "State Bank of India"
quantity = -3
avg_price = 550.0
current_price = 612.3
sector = "Banking"
market_cap = "Large"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := common.NewDefaultConfig()
	cfg.Portfolio.DataPath = path

	_, err := newApp(context.Background(), cfg, common.NewSilentLogger(), time.Now())
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("FOLIO_CONFIG", "")
	assert.Equal(t, "explicit.toml", resolveConfigPath("explicit.toml", t.TempDir()))

	t.Setenv("FOLIO_CONFIG", "/etc/folio.toml")
	assert.Equal(t, "/etc/folio.toml", resolveConfigPath("", t.TempDir()))

	t.Setenv("FOLIO_CONFIG", "")
	dir := t.TempDir()
	assert.Equal(t, "config/folio.toml", resolveConfigPath("", dir))

	beside := filepath.Join(dir, "folio.toml")
	require.NoError(t, os.WriteFile(beside, []byte(""), 0o644))
	assert.Equal(t, beside, resolveConfigPath("", dir))
}

func TestRegisterTools_ListsAllTools(t *testing.T) {
	a := newSeedApp(t)

	var names []string
	for _, tool := range listTools(t, a.MCPServer) {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"get_version", "get_holdings", "get_portfolio_summary",
		"get_allocation", "get_performance", "get_performance_chart",
		"get_portfolio_insights",
	}, names)
}

func TestTools_EndToEnd(t *testing.T) {
	a := newSeedApp(t)

	text, isErr := callTool(t, a.MCPServer, "get_portfolio_summary", nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "# Portfolio Summary: Indian Equity Portfolio")
	assert.Contains(t, text, "TATAMOTORS")
	assert.Contains(t, text, "**Risk Level:** Moderate")

	text, isErr = callTool(t, a.MCPServer, "get_holdings", map[string]interface{}{"sector": "banking"})
	assert.False(t, isErr)
	assert.Contains(t, text, "HDFC")
	assert.Contains(t, text, "SBIN")
	assert.NotContains(t, text, "RELIANCE")

	text, isErr = callTool(t, a.MCPServer, "get_version", nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Status: OK")
}
