package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/workflow"

	"github.com/stretchr/testify/require"
)

const workflowYAML = `
stages:
  in_review:
    - Peer Review
  in_qa:
    - Acceptance
aging_thresholds:
  in_review: 24
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cache"), cfg.CacheDir)
	require.DirExists(t, cfg.CacheDir)
	require.True(t, cfg.Analysis.ExcludeWeekends)
	require.Equal(t, stats.DefaultMinTimeThreshold, cfg.Analysis.MinTimeThreshold)
	require.Equal(t, stats.DefaultAgingThreshold, cfg.Analysis.AgingThresholds[workflow.QA])
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("STAGE_EXCLUDE_WEEKENDS", "false")
	t.Setenv("STAGE_MIN_TIME_THRESHOLD_HOURS", "0.5")
	t.Setenv("CHURN_FLAG_THRESHOLD", "5")
	t.Setenv("AGING_THRESHOLD_IN_PROGRESS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Analysis.ExcludeWeekends)
	require.Equal(t, 0.5, cfg.Analysis.MinTimeThreshold)
	require.Equal(t, 5, cfg.Analysis.ChurnFlagThreshold)
	require.Equal(t, stats.DefaultAgingThreshold, cfg.Analysis.AgingThresholds[workflow.InProgress])
}

func TestLoad_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("STAGE_MIN_TIME_THRESHOLD_HOURS", "-1")

	_, err := Load()
	require.True(t, errors.Is(err, stats.ErrInvalidOptions))
}

func TestLoad_DotEnvWithQuotedWorkflowPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	wfPath := writeFile(t, dir, "my workflow.yaml", workflowYAML)
	writeFile(t, dir, ".env", "WORKFLOW_FILE='"+wfPath+"'\n")
	t.Cleanup(func() { os.Unsetenv("WORKFLOW_FILE") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, wfPath, cfg.WorkflowFile)
	require.Contains(t, cfg.Analysis.Synonyms[workflow.CodeReview], "Peer Review")
	require.Equal(t, 24.0, cfg.Analysis.AgingThresholds[workflow.CodeReview])
}

func TestLoadWorkflow_ExtendsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workflow.yaml", workflowYAML)

	wf, err := LoadWorkflow(path)
	require.NoError(t, err)

	syn := wf.Synonyms()
	require.Contains(t, syn[workflow.CodeReview], "Peer Review")
	require.Contains(t, syn[workflow.CodeReview], "Code Review")
	require.Contains(t, syn[workflow.QA], "Acceptance")

	c := workflow.NewClassifier(syn)
	require.Equal(t, workflow.CodeReview, c.Classify("Peer Review"))
}

func TestLoadWorkflow_ReplaceDefaults(t *testing.T) {
	content := `{"replace_defaults": true, "stages": {"done": ["Shipped"]}}`
	path := writeFile(t, t.TempDir(), "workflow.json", content)

	wf, err := LoadWorkflow(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Shipped"}, wf.Synonyms()[workflow.Done])
	require.NotEmpty(t, wf.Synonyms()[workflow.ToDo])
}

func TestLoadWorkflow_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadWorkflow(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	path := writeFile(t, dir, "bad.yaml", "stages:\n  blocked: [Blocked]\n")
	_, err = LoadWorkflow(path)
	require.ErrorContains(t, err, "unknown stage")
}

func TestApply_MergesAgingThresholds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workflow.yaml", workflowYAML)
	wf, err := LoadWorkflow(path)
	require.NoError(t, err)

	opts := stats.DefaultOptions()
	before := opts.AgingThresholds[workflow.CodeReview]
	wf.Apply(&opts)

	require.Equal(t, 24.0, opts.AgingThresholds[workflow.CodeReview])
	require.Equal(t, stats.DefaultAgingThreshold, opts.AgingThresholds[workflow.InProgress])
	require.Equal(t, stats.DefaultAgingThreshold, before)
	require.NoError(t, opts.Validate())
}
