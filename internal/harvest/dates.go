package harvest

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Layouts accepted for values that carry a time of day. Order matters:
// the first successful parse wins.
var instantLayouts = []string{
	time.RFC3339,               // 2024-03-05T10:00:00Z, fractional seconds accepted
	"2006-01-02T15:04:05-0700", // zone offset without a colon
	"2006-01-02 15:04:05",      // naive wall-clock time, read as UTC
}

// Layouts for values that name a day with no time component. These
// never shift under the timezone offset.
var bareDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
}

// Fallback for strings that merely embed a date somewhere, like
// "stats_2024-03-05_snapshot".
var embeddedDate = regexp.MustCompile(`(20\d{2}-\d{2}-\d{2})`)

// epochMillisCutoff splits epoch seconds from epoch milliseconds.
// Values above it are read as milliseconds.
const epochMillisCutoff = 1_000_000_000_000

// NormalizeDate resolves a raw date value to canonical YYYY-MM-DD form.
//
// Numbers are epoch seconds, or epoch milliseconds above the cutoff.
// offsetHours shifts values that carry an instant, so a capture
// bucketed near midnight UTC lands on the advertiser's local day.
// Values that only name a day pass through untouched regardless of
// offset. Booleans and unrecognized shapes resolve to false.
func NormalizeDate(v interface{}, offsetHours int) (string, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || val >= math.MaxInt64 || val <= math.MinInt64 {
			return "", false
		}
		return epochDate(int64(val), offsetHours)
	case int:
		return epochDate(int64(val), offsetHours)
	case int64:
		return epochDate(val, offsetHours)
	case string:
		return stringDate(val, offsetHours)
	}
	return "", false
}

func epochDate(ts int64, offsetHours int) (string, bool) {
	if ts > epochMillisCutoff {
		ts /= 1000
	}
	t := time.Unix(ts, 0).UTC().Add(time.Duration(offsetHours) * time.Hour)
	if y := t.Year(); y < 1 || y > 9999 {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func stringDate(s string, offsetHours int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.Add(time.Duration(offsetHours) * time.Hour).Format("2006-01-02"), true
	}
	for _, layout := range bareDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if m := embeddedDate.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}
