package stats

import (
	"errors"
	"fmt"
	"time"

	"jira-stage-metrics/internal/workflow"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOptions wraps every validation failure of Options.
var ErrInvalidOptions = errors.New("invalid analysis options")

// Default option values.
const (
	DefaultMinTimeThreshold   = 0.167 // hours, about ten minutes
	DefaultChurnFlagThreshold = 3
	DefaultAgingThreshold     = 72.0 // hours
)

// Options configures a single aggregation run.
type Options struct {
	// ExcludeWeekends drops Saturday and Sunday from every duration.
	ExcludeWeekends bool `json:"exclude_weekends"`
	// MinTimeThreshold (hours) filters negligible intervals out of stage totals.
	MinTimeThreshold float64 `json:"min_time_threshold" validate:"gte=0"`
	// ChurnFlagThreshold is the churn score from which an issue is flagged.
	ChurnFlagThreshold int `json:"churn_flag_threshold" validate:"gte=1"`
	// AgingThresholds (hours) per active stage; stages not listed are not aged.
	AgingThresholds map[workflow.Stage]float64 `json:"aging_thresholds" validate:"dive,gt=0"`
	// Synonyms overrides the built-in status labels per stage.
	Synonyms map[workflow.Stage][]string `json:"-"`
	// AsOf is the instant open intervals end at. Zero means the time the run starts.
	AsOf time.Time `json:"as_of"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ExcludeWeekends:    true,
		MinTimeThreshold:   DefaultMinTimeThreshold,
		ChurnFlagThreshold: DefaultChurnFlagThreshold,
		AgingThresholds: map[workflow.Stage]float64{
			workflow.InProgress: DefaultAgingThreshold,
			workflow.CodeReview: DefaultAgingThreshold,
			workflow.QA:         DefaultAgingThreshold,
		},
	}
}

var validate = validator.New()

// Validate checks the options and reports every violation in one error.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: %s failed on %q (%d violations)", ErrInvalidOptions, first.Namespace(), first.Tag(), len(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	for stage := range o.AgingThresholds {
		if !stage.IsOrdered() {
			return fmt.Errorf("%w: aging threshold for unordered stage %q", ErrInvalidOptions, stage)
		}
	}
	return nil
}
