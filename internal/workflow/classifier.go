package workflow

import (
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Classifier maps raw status labels to stages and remembers every decision it made.
// A Classifier belongs to a single aggregation run and is not safe for concurrent use.
type Classifier struct {
	exact    map[string]Stage
	synonyms map[Stage][]string // lower-cased, per stage
	memo     map[string]Stage
}

// NewClassifier builds a classifier from per-stage synonym lists. Missing stages fall back
// to the built-in synonyms; entries for Other are ignored.
func NewClassifier(synonyms map[Stage][]string) *Classifier {
	defaults := DefaultSynonyms()
	c := &Classifier{
		exact:    make(map[string]Stage),
		synonyms: make(map[Stage][]string),
		memo:     make(map[string]Stage),
	}

	for _, stage := range Ordered {
		list, ok := synonyms[stage]
		if !ok || len(list) == 0 {
			list = defaults[stage]
		}
		for _, syn := range list {
			if syn == "" {
				continue
			}
			// First stage in workflow order keeps a label configured twice.
			if _, taken := c.exact[syn]; !taken {
				c.exact[syn] = stage
			}
			c.synonyms[stage] = append(c.synonyms[stage], strings.ToLower(syn))
		}
	}
	return c
}

// Classify resolves label to a stage: exact synonym first, then a case-insensitive
// synonym-contained-in-label match in workflow order, else Other.
func (c *Classifier) Classify(label string) Stage {
	if s, ok := c.memo[label]; ok {
		return s
	}
	s := c.resolve(label)
	c.memo[label] = s
	return s
}

func (c *Classifier) resolve(label string) Stage {
	if label == "" || label == UnknownLabel {
		return Other
	}
	if s, ok := c.exact[label]; ok {
		return s
	}

	lower := strings.ToLower(label)
	for _, stage := range Ordered {
		for _, syn := range c.synonyms[stage] {
			if strings.Contains(lower, syn) {
				log.Debug().Str("label", label).Str("stage", string(stage)).Str("synonym", syn).Msg("Fuzzy status match")
				return stage
			}
		}
	}
	return Other
}

// Mapping returns a copy of every label classified so far and its stage.
func (c *Classifier) Mapping() map[string]Stage {
	return maps.Clone(c.memo)
}

// Labels returns every label classified so far, sorted.
func (c *Classifier) Labels() []string {
	out := make([]string, 0, len(c.memo))
	for label := range c.memo {
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}

// Uncategorized returns the sorted labels that resolved to Other.
func (c *Classifier) Uncategorized() []string {
	out := []string{}
	for label, s := range c.memo {
		if s == Other {
			out = append(out, label)
		}
	}
	slices.Sort(out)
	return out
}
