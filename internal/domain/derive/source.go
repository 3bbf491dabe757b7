package derive

import (
	"fmt"
	"strings"

	"github.com/okian/contrib-leaderboard/internal/domain/scoring"
)

// Source classification strategies.
const (
	SourceAlwaysAIME = "always_aime"
	SourceSentinel   = "sentinel"
)

// Categories produced by reclassification.
const (
	CategoryAIME = scoring.SourceAIME
	CategoryAMC  = scoring.SourceAMC
)

// placeholderSource is the generic source tag that must be reclassified.
const placeholderSource = "problem"

// SourceClassifier maps a raw source tag to a source category.
type SourceClassifier interface {
	Classify(raw string, metadata map[string]any) string
}

// AlwaysAIME reclassifies every "problem" tag as AIME.
type AlwaysAIME struct{}

// Classify implements SourceClassifier.
func (AlwaysAIME) Classify(raw string, _ map[string]any) string {
	if isPlaceholder(raw) {
		return CategoryAIME
	}
	return raw
}

// Sentinel reclassifies "problem" as AMC when the metadata value at Field
// matches Value (case-insensitive), and as AIME otherwise.
type Sentinel struct {
	Field string
	Value string
}

// Classify implements SourceClassifier.
func (s Sentinel) Classify(raw string, metadata map[string]any) string {
	if !isPlaceholder(raw) {
		return raw
	}
	v, ok := lookupPath(metadata, s.Field)
	if ok && v != nil && strings.EqualFold(strings.TrimSpace(fmt.Sprint(v)), s.Value) {
		return CategoryAMC
	}
	return CategoryAIME
}

// NewSourceClassifier returns the classifier registered under strategy.
func NewSourceClassifier(strategy, field, value string) (SourceClassifier, error) {
	switch strategy {
	case SourceAlwaysAIME, "":
		return AlwaysAIME{}, nil
	case SourceSentinel:
		if field == "" || value == "" {
			return nil, fmt.Errorf("%w: sentinel strategy needs a field and a value", ErrUnknownStrategy)
		}
		return Sentinel{Field: field, Value: value}, nil
	default:
		return nil, fmt.Errorf("%w: source strategy %q", ErrUnknownStrategy, strategy)
	}
}

func isPlaceholder(raw string) bool {
	return strings.EqualFold(raw, placeholderSource)
}
