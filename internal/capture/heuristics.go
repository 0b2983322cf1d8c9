package capture

import (
	"regexp"
	"strings"

	apperrors "adspulse/internal/errors"
	"adspulse/internal/harvest"
)

// defaultURLPattern matches the endpoint shapes that serve advertising
// metrics on seller dashboards.
const defaultURLPattern = `/api/|/v\d/|advert|ads|promoted|campaign|metrics`

// sniffMaxDepth caps the walk when scanning payloads. Sniffing never
// needs the harvester's configurable limit; this only guards against
// pathological nesting.
const sniffMaxDepth = 200

// metricHints are the field names whose presence in any object node
// marks a payload as metrics-shaped.
var metricHints = newHintSet(
	"impressions", "clicks", "spend", "orders", "revenue",
	"ctr", "roas", "cost", "views",
	"attributed_orders", "attributed_revenue",
	"currency_code", "amount", "date", "day",
)

func newHintSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Heuristics decides which captured responses are worth spooling.
type Heuristics struct {
	urlPattern *regexp.Regexp
}

// NewHeuristics compiles the URL relevance pattern, case-insensitive.
// An empty pattern selects the built-in one.
func NewHeuristics(pattern string) (*Heuristics, error) {
	if pattern == "" {
		pattern = defaultURLPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid capture url pattern", err)
	}
	return &Heuristics{urlPattern: re}, nil
}

// RelevantURL reports whether url plausibly serves ads metrics.
func (h *Heuristics) RelevantURL(url string) bool {
	return h.urlPattern.MatchString(url)
}

// JSONContentType reports whether a Content-Type header names JSON,
// loosely enough to cover vendor types like application/vnd.api+json.
func (h *Heuristics) JSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// LooksLikeMetrics walks the decoded body and reports whether any
// object node carries a metric hint key.
func (h *Heuristics) LooksLikeMetrics(data interface{}) bool {
	found := false
	_ = harvest.WalkObjects(data, sniffMaxDepth, func(rec map[string]interface{}) {
		if found {
			return
		}
		for k := range rec {
			if _, ok := metricHints[strings.ToLower(k)]; ok {
				found = true
				return
			}
		}
	})
	return found
}
