package harvest

import "strings"

// Classifier decides whether a record is a per-day datapoint or an
// aggregate covering a whole date range.
type Classifier struct {
	rules *Rules
}

// NewClassifier builds a Classifier. A nil rules falls back to
// DefaultRules.
func NewClassifier(rules *Rules) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// IsRangeTotal reports whether rec aggregates a date range rather than
// a single day. A range hint alone is not enough: records that also
// carry a per-day container keep their daily granularity, since the
// hint there describes the envelope, not the datapoints.
func (c *Classifier) IsRangeTotal(rec map[string]interface{}) bool {
	hinted := false
	for k := range rec {
		if c.rules.RangeHints.Has(strings.ToLower(k)) {
			hinted = true
			break
		}
	}
	if !hinted {
		return false
	}
	for k := range rec {
		if c.rules.DayContainers.Has(strings.ToLower(k)) {
			return false
		}
	}
	return true
}
