package capture

import (
	"sort"
	"strconv"
	"strings"

	"adspulse/internal/harvest"
)

// previewAliases resolve a few well-known field names per preview
// column. This is deliberately a fraction of the harvester's alias
// table; the preview is a quick look, not the reconciliation pipeline.
var previewAliases = map[string][]string{
	"views":   {"views", "impressions", "ad_impressions"},
	"clicks":  {"clicks"},
	"spend":   {"spend", "cost", "spend_cents"},
	"orders":  {"orders", "purchases"},
	"revenue": {"revenue", "sales"},
}

// previewColumns fixes the preview CSV layout.
var previewColumns = []string{"date", "views", "clicks", "spend", "orders", "revenue"}

// dateAliases feed the date column, tried in order.
var dateAliases = []string{"date", "day"}

// PreviewRow is one best-effort daily datapoint pulled straight out of
// a captured body.
type PreviewRow struct {
	Date    string
	Metrics map[string]float64
}

// PreviewExtractor scans accepted bodies for rows that already look
// like daily metrics, deduplicating exact repeats across bodies.
type PreviewExtractor struct {
	rows []PreviewRow
	seen map[string]struct{}
}

func NewPreviewExtractor() *PreviewExtractor {
	return &PreviewExtractor{seen: make(map[string]struct{})}
}

// Collect walks one decoded body and keeps every object node with a
// resolvable date and at least one aliased metric.
func (p *PreviewExtractor) Collect(data interface{}) {
	_ = harvest.WalkObjects(data, sniffMaxDepth, func(rec map[string]interface{}) {
		row, ok := previewRow(rec)
		if !ok {
			return
		}
		key := row.fingerprint()
		if _, dup := p.seen[key]; dup {
			return
		}
		p.seen[key] = struct{}{}
		p.rows = append(p.rows, row)
	})
}

// Empty reports whether nothing preview-worthy was seen.
func (p *PreviewExtractor) Empty() bool {
	return len(p.rows) == 0
}

// Rows returns collected rows sorted by date, first-seen order within
// a date.
func (p *PreviewExtractor) Rows() []PreviewRow {
	rows := make([]PreviewRow, len(p.rows))
	copy(rows, p.rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// PreviewColumns returns the preview CSV column order: date first,
// then the five standard metrics.
func PreviewColumns() []string {
	header := make([]string, len(previewColumns))
	copy(header, previewColumns)
	return header
}

// previewRow reads one record. Only the first present date alias is
// consulted; a record whose date does not normalize yields nothing.
func previewRow(rec map[string]interface{}) (PreviewRow, bool) {
	lowered := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		lowered[strings.ToLower(k)] = v
	}

	var date string
	for _, alias := range dateAliases {
		v, ok := lowered[alias]
		if !ok {
			continue
		}
		if d, ok := harvest.NormalizeDate(v, 0); ok {
			date = d
		}
		break
	}
	if date == "" {
		return PreviewRow{}, false
	}

	metrics := make(map[string]float64)
	for _, col := range previewColumns[1:] {
		for _, alias := range previewAliases[col] {
			v, ok := lowered[alias]
			if !ok {
				continue
			}
			num, ok := harvest.CoerceNumber(v)
			if !ok {
				continue
			}
			// Only spend_cents appears in previewAliases, so this
			// scales exactly that one alias. Other _cents fields
			// (revenue_cents, sales_cents) are simply not previewed;
			// the harvester's canonicalizer handles them in full.
			if strings.HasSuffix(alias, "_cents") {
				num /= 100
			}
			metrics[col] = num
			break
		}
	}
	if len(metrics) == 0 {
		return PreviewRow{}, false
	}
	return PreviewRow{Date: date, Metrics: metrics}, true
}

func (r PreviewRow) fingerprint() string {
	var b strings.Builder
	b.WriteString(r.Date)
	cols := make([]string, 0, len(r.Metrics))
	for col := range r.Metrics {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		b.WriteByte('|')
		b.WriteString(col)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(r.Metrics[col], 'f', -1, 64))
	}
	return b.String()
}
