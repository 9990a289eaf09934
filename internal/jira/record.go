package jira

import (
	"errors"
	"fmt"

	"jira-stage-metrics/internal/timeline"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// StatusField is the only changelog field the engine consumes.
const StatusField = "status"

// Record is the per-issue ingest shape: an issue with its status changelog, timestamps kept
// as the tracker wrote them.
type Record struct {
	Key          string           `json:"key" validate:"required" jsonschema:"issue key, e.g. PROJ-123"`
	CreatedAt    string           `json:"createdAt,omitempty" jsonschema:"creation timestamp (ISO-8601); empty when unknown"`
	ResolvedAt   *string          `json:"resolvedAt,omitempty" jsonschema:"resolution timestamp (ISO-8601)"`
	CurrentLabel string           `json:"currentLabel,omitempty" jsonschema:"current status name"`
	Changelog    []ChangelogEntry `json:"changelog,omitempty" validate:"dive" jsonschema:"status changes in insertion order"`
}

// ChangelogEntry is one field transition of a Record.
type ChangelogEntry struct {
	Timestamp string  `json:"timestamp" validate:"required" jsonschema:"time of the change (ISO-8601)"`
	Field     string  `json:"field" validate:"required" jsonschema:"changed field name"`
	FromLabel *string `json:"fromLabel,omitempty" jsonschema:"previous status name"`
	ToLabel   string  `json:"toLabel" jsonschema:"new status name"`
}

var validate = validator.New()

// Validate checks the structural requirements of a record.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("record %q: %s failed on %q", r.Key, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("record %q: %w", r.Key, err)
	}
	return nil
}

// ToIssue converts a record into the engine's input. Non-status entries are ignored and
// unparseable changelog timestamps are dropped with a warning; an unparseable creation
// time leaves CreatedAt zero so the issue is reported as a reconstruction failure.
func (r Record) ToIssue() timeline.Issue {
	issue := timeline.Issue{
		Key:          r.Key,
		CurrentLabel: r.CurrentLabel,
	}

	if r.CreatedAt != "" {
		if t, err := ParseTime(r.CreatedAt); err == nil {
			issue.CreatedAt = t
		} else {
			log.Warn().Str("issue", r.Key).Err(err).Msg("Ignoring invalid creation date")
		}
	}

	if r.ResolvedAt != nil && *r.ResolvedAt != "" {
		if t, err := ParseTime(*r.ResolvedAt); err == nil {
			issue.ResolvedAt = &t
		} else {
			log.Warn().Str("issue", r.Key).Err(err).Msg("Ignoring invalid resolution date")
		}
	}

	for _, c := range r.Changelog {
		if c.Field != StatusField {
			continue
		}
		at, err := ParseTime(c.Timestamp)
		if err != nil {
			log.Warn().Str("issue", r.Key).Err(err).Msg("Dropping changelog entry with invalid timestamp")
			continue
		}
		tr := timeline.Transition{At: at, To: c.ToLabel}
		if c.FromLabel != nil {
			tr.From = *c.FromLabel
		}
		issue.Changelog = append(issue.Changelog, tr)
	}

	return issue
}

// ToIssues converts a batch of records, preserving order.
func ToIssues(records []Record) []timeline.Issue {
	issues := make([]timeline.Issue, 0, len(records))
	for _, r := range records {
		issues = append(issues, r.ToIssue())
	}
	return issues
}
