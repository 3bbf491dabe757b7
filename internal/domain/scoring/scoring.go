// Package scoring maps an asset's source category to the points it is worth.
package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Source categories with a default weight.
const (
	SourceAIME = "AIME"
	SourceAMC  = "AMC"
)

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithSourceWeights replaces the weight table. Negative weights are ignored.
func WithSourceWeights(weights map[string]float64) Option {
	return func(s *WeightedScorer) {
		if len(weights) == 0 {
			return
		}
		// Copy the weights map to avoid external modifications
		s.weights = make(map[string]float64, len(weights))
		for source, weight := range weights {
			if weight >= 0 {
				s.weights[source] = weight
			}
		}
	}
}

// Scorer assigns points to a source category.
type Scorer interface {
	// Points returns the weight for source; ok is false when the source has no weight.
	Points(source string) (points float64, ok bool)
}

// Rule is one row of the points table.
type Rule struct {
	Source string  `json:"source"`
	Points float64 `json:"points"`
}

// WeightedScorer implements Scorer with a fixed table. There is no default
// weight: unknown sources stay unscored.
type WeightedScorer struct {
	weights map[string]float64
}

// NewWeightedScorer creates a scorer with AIME=1.5 and AMC=1.0 unless overridden.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		weights: map[string]float64{
			SourceAIME: 1.5,
			SourceAMC:  1.0,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Points returns the weight for source.
func (s *WeightedScorer) Points(source string) (float64, bool) {
	w, ok := s.weights[source]
	return w, ok
}

// Rules returns the table ordered by points desc, then source name.
func (s *WeightedScorer) Rules() []Rule {
	rules := make([]Rule, 0, len(s.weights))
	for source, points := range s.weights {
		rules = append(rules, Rule{Source: source, Points: points})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Points != rules[j].Points {
			return rules[i].Points > rules[j].Points
		}
		return rules[i].Source < rules[j].Source
	})
	return rules
}

// Explain renders the points table for display.
func (s *WeightedScorer) Explain() string {
	var b strings.Builder
	b.WriteString("Points System:\n")
	for _, r := range s.Rules() {
		fmt.Fprintf(&b, "• %s Problem = %.1f points\n", r.Source, r.Points)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
