package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"jira-stage-metrics/internal/config"
	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/store"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testServer(t *testing.T) *Server {
	t.Helper()
	opts := stats.DefaultOptions()
	opts.ExcludeWeekends = false

	cfg := &config.AppConfig{CacheDir: t.TempDir(), Analysis: opts}
	st := store.NewRecordStore()
	st.Append("board-1", []jira.Record{
		{
			Key:          "PROJ-1",
			CreatedAt:    "2024-01-01T09:00:00Z",
			CurrentLabel: "In Progress",
			Changelog: []jira.ChangelogEntry{
				{Timestamp: "2024-01-02T09:00:00Z", Field: "status", FromLabel: strPtr("To Do"), ToLabel: "In Review"},
				{Timestamp: "2024-01-03T09:00:00Z", Field: "status", FromLabel: strPtr("In Review"), ToLabel: "In Progress"},
			},
		},
		{Key: "PROJ-2", CreatedAt: "2024-01-01T09:00:00Z", CurrentLabel: "Waiting for Customer"},
	})
	return NewServer(cfg, st, "test")
}

func decodeText(t *testing.T, res *sdk.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleAnalyzeStageMetrics(t *testing.T) {
	s := testServer(t)

	res, _, err := s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{SourceID: "board-1", IncludeCharts: true})
	require.NoError(t, err)

	out := decodeText(t, res)
	report := out["report"].(map[string]any)
	require.EqualValues(t, 2, report["total_issues"])

	churn := report["churn_metrics"].(map[string]any)
	require.EqualValues(t, 1, churn["total_churn"])

	guidance := out["_guidance"].([]any)
	require.Contains(t, guidance[0], "Waiting for Customer")
	require.NotEmpty(t, out["charts"])
}

func TestHandleAnalyzeStageMetrics_FromPath(t *testing.T) {
	s := testServer(t)
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"key":"X-1","createdAt":"2024-01-01T00:00:00Z","currentLabel":"Done"}]`), 0644))

	res, _, err := s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{Path: path})
	require.NoError(t, err)
	report := decodeText(t, res)["report"].(map[string]any)
	require.EqualValues(t, 1, report["completed_issues"])
}

func TestHandleAnalyzeStageMetrics_LoadsCache(t *testing.T) {
	s := testServer(t)
	require.NoError(t, s.store.Save(s.cfg.CacheDir, "board-1"))
	s.store.Clear("board-1")

	_, _, err := s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{SourceID: "board-1"})
	require.NoError(t, err)
	require.Equal(t, 2, s.store.Count("board-1"))
}

func TestHandleAnalyzeStageMetrics_Errors(t *testing.T) {
	s := testServer(t)

	_, _, err := s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{})
	require.Error(t, err)

	_, _, err = s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{SourceID: "nope"})
	require.ErrorIs(t, err, store.ErrUnknownSource)

	negative := -1.0
	_, _, err = s.handleAnalyzeStageMetrics(context.Background(), nil, AnalyzeArgs{SourceID: "board-1", MinTimeThreshold: &negative})
	require.ErrorIs(t, err, stats.ErrInvalidOptions)
}

func TestHandleAnalyzeIssueTimeline(t *testing.T) {
	s := testServer(t)

	res, _, err := s.handleAnalyzeIssueTimeline(context.Background(), nil, TimelineArgs{SourceID: "board-1", IssueKey: "proj-1"})
	require.NoError(t, err)

	out := decodeText(t, res)
	require.Equal(t, "PROJ-1", out["key"])
	require.Len(t, out["intervals"].([]any), 3)
	require.EqualValues(t, 1, out["churn"].(map[string]any)["score"])

	_, _, err = s.handleAnalyzeIssueTimeline(context.Background(), nil, TimelineArgs{SourceID: "board-1", IssueKey: "PROJ-404"})
	require.ErrorContains(t, err, "not found")
}

func TestHandleClassifyStatuses(t *testing.T) {
	s := testServer(t)

	res, _, err := s.handleClassifyStatuses(context.Background(), nil, ClassifyArgs{Labels: []string{"IN REVIEW", "pr review", "Blocked"}})
	require.NoError(t, err)

	out := decodeText(t, res)
	mapping := out["status_mapping"].(map[string]any)
	require.Equal(t, "in_review", mapping["IN REVIEW"])
	require.Equal(t, "in_review", mapping["pr review"])
	require.Equal(t, "other", mapping["Blocked"])
	require.Equal(t, []any{"Blocked"}, out["uncategorized_statuses"])
}

func TestServer_InMemorySession(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	serverTransport, clientTransport := sdk.NewInMemoryTransports()
	serverSession, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	defer serverSession.Close()

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"analyze_stage_metrics", "analyze_issue_timeline", "classify_statuses", "list_sources"}, names)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name:      "list_sources",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	sources := decodeText(t, res)["sources"].(map[string]any)
	require.EqualValues(t, 2, sources["board-1"])

	res, err = session.CallTool(ctx, &sdk.CallToolParams{
		Name:      "analyze_stage_metrics",
		Arguments: map[string]any{"source_id": "missing"},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
}
