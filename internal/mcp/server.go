package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"jira-stage-metrics/internal/config"
	"jira-stage-metrics/internal/store"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server exposes the stage metrics engine as MCP tools.
type Server struct {
	cfg    *config.AppConfig
	store  *store.RecordStore
	server *sdk.Server
}

// NewServer creates a new MCP server backed by the given record store.
func NewServer(cfg *config.AppConfig, st *store.RecordStore, version string) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "stage-metrics",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("cache", s.cfg.CacheDir).Msg("MCP server listening on stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport (used by in-process clients).
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name: "analyze_stage_metrics",
		Description: "Reconstruct every issue's stage timeline and aggregate stage durations, cycle times, churn (backward moves) and aging. " +
			"Provide either 'source_id' (a cached import) or 'path' (a records or Jira search file). " +
			"Guidance: check 'workflow_info.uncategorized_statuses' before interpreting stage numbers; unmapped statuses are excluded from durations.",
	}, s.handleAnalyzeStageMetrics)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "analyze_issue_timeline",
		Description: "Explain a single issue: its stage intervals with hours, whether each interval passed the noise threshold, and its churn. " +
			"Use it to audit a number from 'analyze_stage_metrics'.",
	}, s.handleAnalyzeIssueTimeline)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "classify_statuses",
		Description: "Map raw status names to canonical stages (to_do, in_progress, in_review, in_qa, done, other) using the configured workflow.",
	}, s.handleClassifyStatuses)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_sources",
		Description: "List the cached imports available as 'source_id' and the number of issues in each.",
	}, s.handleListSources)
}

func textResult(data any) (*sdk.CallToolResult, any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(out)}},
	}, nil, nil
}
