package harvest

import "sort"

// Accumulator collects every observation per (date, metric) cell along
// with a census of the numeric field names seen. It is not safe for
// concurrent use; parallel harvests give each worker its own
// accumulator and merge the partials afterwards.
type Accumulator struct {
	byDate  map[string]map[string][]float64
	keyFreq map[string]int
}

// KeyCount is one entry of the numeric field name census.
type KeyCount struct {
	Key   string
	Count int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		byDate:  make(map[string]map[string][]float64),
		keyFreq: make(map[string]int),
	}
}

// Observe appends one value to a (date, metric) cell.
func (a *Accumulator) Observe(date, metric string, value float64) {
	metrics, ok := a.byDate[date]
	if !ok {
		metrics = make(map[string][]float64)
		a.byDate[date] = metrics
	}
	metrics[metric] = append(metrics[metric], value)
}

// CountKey bumps the census for a lowercased field name. The census
// counts every numeric field seen, including ones later dropped by
// sibling suppression, so it reflects what the payloads contain rather
// than what survived.
func (a *Accumulator) CountKey(name string) {
	a.keyFreq[name]++
}

// Merge folds other into a. Observation order within a cell is a's
// values followed by other's.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for date, metrics := range other.byDate {
		for metric, vals := range metrics {
			for _, v := range vals {
				a.Observe(date, metric, v)
			}
		}
	}
	for k, n := range other.keyFreq {
		a.keyFreq[k] += n
	}
}

// Empty reports whether no dated observations were collected.
func (a *Accumulator) Empty() bool {
	return len(a.byDate) == 0
}

// Dates returns every observed day in ascending order.
func (a *Accumulator) Dates() []string {
	dates := make([]string, 0, len(a.byDate))
	for d := range a.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Metrics returns every canonical metric observed on any date, sorted.
func (a *Accumulator) Metrics() []string {
	seen := make(map[string]struct{})
	for _, metrics := range a.byDate {
		for m := range metrics {
			seen[m] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for m := range seen {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// Values returns the raw observations for one cell, nil when the cell
// was never observed.
func (a *Accumulator) Values(date, metric string) []float64 {
	return a.byDate[date][metric]
}

// KeyFrequency returns the field name census sorted by descending
// count, ties broken by name.
func (a *Accumulator) KeyFrequency() []KeyCount {
	counts := make([]KeyCount, 0, len(a.keyFreq))
	for k, n := range a.keyFreq {
		counts = append(counts, KeyCount{Key: k, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Key < counts[j].Key
	})
	return counts
}
