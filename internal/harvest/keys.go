package harvest

import (
	"strconv"
	"strings"
)

// CoerceNumber tries to read v as a metric value. Numbers pass through;
// strings are trimmed, stripped of thousands separators and parsed.
// Booleans never coerce, so flag fields cannot leak into metrics.
func CoerceNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Field is one canonicalized observation taken from a record.
type Field struct {
	Canonical string  // metric name after alias remapping
	Base      string  // field name after unit-suffix stripping, before remapping
	Value     float64 // value after unit rescaling
}

// Canonicalizer resolves raw field names to canonical metrics,
// rescaling minor units and suppressing redundant siblings.
type Canonicalizer struct {
	rules *Rules
}

// NewCanonicalizer builds a Canonicalizer. A nil rules falls back to
// DefaultRules.
func NewCanonicalizer(rules *Rules) *Canonicalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Canonicalizer{rules: rules}
}

// IsDateKey reports whether name carries a record's date.
func (c *Canonicalizer) IsDateKey(name string) bool {
	return c.rules.DateKeys.Has(strings.ToLower(name))
}

// IsSkipKey reports whether name is an identifier or dimension field.
func (c *Canonicalizer) IsSkipKey(name string) bool {
	return c.rules.SkipKeys.Has(strings.ToLower(name))
}

// Canonicalize resolves one field against the full lowercased key set
// of its record. A _cents suffix divides by 100, a _micros suffix by
// one million, and known cents-like names divide by 100 without a
// suffix. The stripped name then remaps to its canonical metric.
//
// Returns false when the field is a bare spend or revenue shadowed by
// a scaled sibling in the same record; the sibling is authoritative
// and counting both would double the money.
func (c *Canonicalizer) Canonicalize(name string, value float64, keys stringSet) (Field, bool) {
	kl := strings.ToLower(name)
	if kl == "spend" || kl == "revenue" {
		if keys.Has(kl+"_cents") || keys.Has(kl+"_micros") {
			return Field{}, false
		}
		if kl == "spend" && c.hasCentsLikeSibling(keys) {
			return Field{}, false
		}
	}
	base := kl
	switch {
	case strings.HasSuffix(kl, "_cents"):
		base = strings.TrimSuffix(kl, "_cents")
		value /= 100
	case strings.HasSuffix(kl, "_micros"):
		base = strings.TrimSuffix(kl, "_micros")
		value /= 1e6
	case c.rules.CentsLike.Has(kl):
		value /= 100
	}
	canonical := base
	if mapped, ok := c.rules.Remap[base]; ok {
		canonical = mapped
	}
	return Field{Canonical: canonical, Base: base, Value: value}, true
}

func (c *Canonicalizer) hasCentsLikeSibling(keys stringSet) bool {
	for k := range c.rules.CentsLike {
		if keys.Has(k) {
			return true
		}
	}
	return false
}

// recordKeySet lowers every key of a record for sibling lookups.
func recordKeySet(rec map[string]interface{}) stringSet {
	keys := make(stringSet, len(rec))
	for k := range rec {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return keys
}
