package config

import (
	"fmt"
	"maps"

	"jira-stage-metrics/internal/stats"
	"jira-stage-metrics/internal/workflow"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// WorkflowFile describes a team's workflow: extra status labels per stage and aging
// thresholds. Stage keys are the canonical stage names (to_do, in_progress, in_review, in_qa,
// done). YAML, JSON and TOML are accepted.
type WorkflowFile struct {
	Stages          map[string][]string `mapstructure:"stages"`
	AgingThresholds map[string]float64  `mapstructure:"aging_thresholds"`
	// ReplaceDefaults drops the built-in labels of every stage listed in Stages.
	ReplaceDefaults bool `mapstructure:"replace_defaults"`

	synonyms map[workflow.Stage][]string
	aging    map[workflow.Stage]float64
}

// LoadWorkflow reads and checks a workflow file.
func LoadWorkflow(path string) (*WorkflowFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	var wf WorkflowFile
	if err := v.Unmarshal(&wf); err != nil {
		return nil, fmt.Errorf("failed to decode workflow file %s: %w", path, err)
	}

	wf.synonyms = make(map[workflow.Stage][]string, len(wf.Stages))
	for key, labels := range wf.Stages {
		stage, ok := workflow.ParseStage(key)
		if !ok || !stage.IsOrdered() {
			return nil, fmt.Errorf("workflow file %s: unknown stage %q", path, key)
		}
		wf.synonyms[stage] = labels
	}

	wf.aging = make(map[workflow.Stage]float64, len(wf.AgingThresholds))
	for key, hours := range wf.AgingThresholds {
		stage, ok := workflow.ParseStage(key)
		if !ok || !stage.IsOrdered() {
			return nil, fmt.Errorf("workflow file %s: unknown stage %q in aging_thresholds", path, key)
		}
		wf.aging[stage] = hours
	}

	log.Debug().Str("path", path).Int("stages", len(wf.synonyms)).Msg("Loaded workflow file")
	return &wf, nil
}

// Synonyms returns the label lists per stage: the built-in labels extended (or replaced) by
// the file's labels.
func (wf *WorkflowFile) Synonyms() map[workflow.Stage][]string {
	out := workflow.DefaultSynonyms()
	for stage, labels := range wf.synonyms {
		if wf.ReplaceDefaults {
			out[stage] = append([]string(nil), labels...)
			continue
		}
		out[stage] = append(out[stage], labels...)
	}
	return out
}

// Apply merges the workflow file into analysis options.
func (wf *WorkflowFile) Apply(opts *stats.Options) {
	opts.Synonyms = wf.Synonyms()
	if len(wf.aging) > 0 {
		merged := maps.Clone(opts.AgingThresholds)
		if merged == nil {
			merged = make(map[workflow.Stage]float64, len(wf.aging))
		}
		maps.Copy(merged, wf.aging)
		opts.AgingThresholds = merged
	}
}
