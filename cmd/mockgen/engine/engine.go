package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/store"
)

const (
	ScenarioMild  = "mild"
	ScenarioChurn = "churn"
)

type GeneratorConfig struct {
	Scenario     string
	Distribution string // "uniform" or "weibull"
	Count        int
	Now          time.Time
	Seed         int64
}

// path is the status sequence every generated issue walks through.
var path = []string{"To Do", "In Progress", "Code Review", "QA", "Done"}

// Generate returns Count issue records created one per day up to Now. Each issue advances
// through path; in the churn scenario some issues bounce back from review or QA, or sit in
// a status no stage recognizes.
func Generate(cfg GeneratorConfig) []jira.Record {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	records := make([]jira.Record, 0, cfg.Count)
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count)

	for i := 0; i < cfg.Count; i++ {
		g := issueGen{
			rng:     rng,
			cfg:     cfg,
			current: path[0],
			at:      tArrival.Add(time.Duration(i*24) * time.Hour),
		}
		rec := jira.Record{
			Key:       fmt.Sprintf("MOCK-%d", i+1),
			CreatedAt: g.at.Format(time.RFC3339),
		}

	walk:
		for step := 1; step < len(path); step++ {
			target := path[step]
			if !g.advance(target) {
				break
			}
			if cfg.Scenario != ScenarioChurn {
				continue
			}
			switch target {
			case "In Progress":
				if rng.Float64() < 0.1 && (!g.advance("Blocked") || !g.advance(target)) {
					break walk
				}
			case "Code Review", "QA":
				// Bounce back to development, then retry the stage.
				if rng.Float64() < 0.35 && (!g.advance("In Progress") || !g.advance(target)) {
					break walk
				}
			}
		}

		rec.Changelog = g.changes
		rec.CurrentLabel = g.current
		if g.current == "Done" {
			resolved := g.at.Format(time.RFC3339)
			rec.ResolvedAt = &resolved
		}
		records = append(records, rec)
	}
	return records
}

type issueGen struct {
	rng     *rand.Rand
	cfg     GeneratorConfig
	current string
	at      time.Time
	changes []jira.ChangelogEntry
}

// advance moves the issue to status after a sampled residency, unless that would pass Now.
func (g *issueGen) advance(status string) bool {
	next := g.at.Add(time.Duration(g.residencyHours() * float64(time.Hour)))
	if !next.Before(g.cfg.Now) {
		return false
	}
	from := g.current
	g.changes = append(g.changes, jira.ChangelogEntry{
		Timestamp: next.Format(time.RFC3339),
		Field:     jira.StatusField,
		FromLabel: &from,
		ToLabel:   status,
	})
	g.current = status
	g.at = next
	return true
}

func (g *issueGen) residencyHours() float64 {
	if g.cfg.Distribution == "weibull" {
		return 24 * weibullSample(g.rng, 1.5, 1.8)
	}
	// Uniform baseline: 4h to 2.5 days per status.
	return 4 + g.rng.Float64()*56
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the records to the JSONL cache of sourceID in outDir.
func Save(outDir string, sourceID string, records []jira.Record) error {
	st := store.NewRecordStore()
	st.Append(sourceID, records)
	return st.Save(outDir, sourceID)
}
