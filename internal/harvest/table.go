package harvest

import (
	"math"
	"strconv"
)

// standardColumns fixes the leading column order of the daily table.
var standardColumns = []string{"views", "clicks", "spend", "orders", "revenue"}

// derivedColumns fixes the trailing derived-rate order.
var derivedColumns = []string{"ctr", "cpc", "cpm", "order_rate", "roas"}

// Table is the assembled daily metrics grid, ready for serialization.
// Cells are formatted strings; a cell whose metric was never observed
// on that day is empty rather than zero, so a blank means "not seen"
// and 0 means "seen and it was zero".
type Table struct {
	Header []string
	Rows   [][]string
}

// TableOptions control reduction and derived-rate assembly.
type TableOptions struct {
	Policy  Policy
	Derived bool
}

// BuildTable reduces an accumulator to one row per day. Columns run
// date, the standard metrics, every other observed metric in sorted
// order, then the derived rates when enabled. A raw metric that
// collides with a derived column name is dropped in favor of the
// derived value.
func BuildTable(acc *Accumulator, opts TableOptions) *Table {
	others := otherColumns(acc, opts.Derived)

	header := make([]string, 0, 1+len(standardColumns)+len(others)+len(derivedColumns))
	header = append(header, "date")
	header = append(header, standardColumns...)
	header = append(header, others...)
	if opts.Derived {
		header = append(header, derivedColumns...)
	}

	dates := acc.Dates()
	rows := make([][]string, 0, len(dates))
	for _, date := range dates {
		row := make([]string, 0, len(header))
		row = append(row, date)

		std := make(map[string]float64, len(standardColumns))
		for _, col := range standardColumns {
			vals := acc.Values(date, col)
			if len(vals) == 0 {
				row = append(row, "")
				continue
			}
			v := Reduce(vals, opts.Policy)
			std[col] = v
			row = append(row, FormatMetric(v))
		}
		for _, col := range others {
			vals := acc.Values(date, col)
			if len(vals) == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, FormatMetric(Reduce(vals, opts.Policy)))
		}
		if opts.Derived {
			row = append(row, FormatMetric(ratio(std["clicks"], std["views"])))
			row = append(row, FormatMetric(ratio(std["spend"], std["clicks"])))
			row = append(row, FormatMetric(ratio(std["spend"], std["views"])*1000))
			row = append(row, FormatMetric(ratio(std["orders"], std["clicks"])))
			row = append(row, FormatMetric(ratio(std["revenue"], std["spend"])))
		}
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}
}

func otherColumns(acc *Accumulator, derived bool) []string {
	reserved := make(map[string]struct{}, len(standardColumns)+len(derivedColumns))
	for _, c := range standardColumns {
		reserved[c] = struct{}{}
	}
	if derived {
		for _, c := range derivedColumns {
			reserved[c] = struct{}{}
		}
	}
	var others []string
	for _, m := range acc.Metrics() {
		if _, ok := reserved[m]; !ok {
			others = append(others, m)
		}
	}
	return others
}

// ratio divides guarding the zero denominator, which reads as "no
// activity" rather than an error.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// FormatMetric rounds to six decimal places and renders without
// trailing zeros, so 5.0 prints "5" and 0.123456 survives intact.
// Rounding happens only here, at the output boundary, so upstream
// reductions never compound rounding error.
func FormatMetric(v float64) string {
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
