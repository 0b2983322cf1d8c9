package capture

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// spoolBaseMax bounds the sanitized URL stem. The tail of a long API
// path is the part that distinguishes endpoints, so truncation keeps
// the end, not the start.
const spoolBaseMax = 80

// spoolTimeFormat stamps spool names with second resolution.
const spoolTimeFormat = "20060102_150405"

// SpoolBase sanitizes a URL into a spool file stem: the query string
// drops and every non-alphanumeric run collapses to one underscore.
func SpoolBase(rawURL string) string {
	base, _, _ := strings.Cut(rawURL, "?")
	base = nonAlnum.ReplaceAllString(base, "_")
	if len(base) > spoolBaseMax {
		base = base[len(base)-spoolBaseMax:]
	}
	return base
}

// SpoolName joins the sanitized stem with a capture timestamp.
func SpoolName(rawURL string, now time.Time) string {
	return fmt.Sprintf("%s_%s.json", SpoolBase(rawURL), now.Format(spoolTimeFormat))
}
