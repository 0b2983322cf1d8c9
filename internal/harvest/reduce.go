package harvest

import (
	"fmt"
	"sort"

	apperrors "adspulse/internal/errors"
)

// Policy selects how multiple observations of the same (date, metric)
// cell collapse to one value.
type Policy string

const (
	// PolicySum adds every observation. The right choice when
	// captures are disjoint fragments of the same day.
	PolicySum Policy = "sum"

	// PolicyMinNonzero keeps the smallest strictly-positive value, or
	// 0 if none are positive. Suppresses inflated range totals that
	// slipped past classification, on the assumption the true daily
	// value is usually the smallest nonzero candidate.
	PolicyMinNonzero Policy = "min-nonzero"

	// PolicyMin keeps the smallest value, zero and negative included.
	PolicyMin Policy = "min"

	// PolicyMax keeps the largest value.
	PolicyMax Policy = "max"

	// PolicyMedian keeps the median, averaging the middle pair when
	// the count is even.
	PolicyMedian Policy = "median"
)

// ParsePolicy validates a policy name from a flag or config file.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicySum, PolicyMinNonzero, PolicyMin, PolicyMax, PolicyMedian:
		return p, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown reduction policy %q", s))
}

// Reduce collapses vals under the given policy. An empty slice reduces
// to 0 for every policy, and an unrecognized policy falls back to sum.
// The result is never rounded here; rounding happens once, at output.
func Reduce(vals []float64, policy Policy) float64 {
	if len(vals) == 0 {
		return 0
	}
	switch policy {
	case PolicyMinNonzero:
		var best float64
		found := false
		for _, v := range vals {
			if v > 0 && (!found || v < best) {
				best = v
				found = true
			}
		}
		if !found {
			return 0
		}
		return best
	case PolicyMin:
		best := vals[0]
		for _, v := range vals[1:] {
			if v < best {
				best = v
			}
		}
		return best
	case PolicyMax:
		best := vals[0]
		for _, v := range vals[1:] {
			if v > best {
				best = v
			}
		}
		return best
	case PolicyMedian:
		s := make([]float64, len(vals))
		copy(s, vals)
		sort.Float64s(s)
		mid := len(s) / 2
		if len(s)%2 == 1 {
			return s[mid]
		}
		return (s[mid-1] + s[mid]) / 2
	default:
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum
	}
}
