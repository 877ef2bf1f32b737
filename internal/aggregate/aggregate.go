// Package aggregate computes the summary statistics behind every chart:
// value counts, grouped sums and means, top-N cuts and numeric point clouds.
// All functions are pure over an institution.Table.
package aggregate

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"instviz/domain/institution"
)

// Bucket is one labelled value of a distribution
type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"` // rows that contributed
}

// Point is one scatter observation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result is the output of one aggregation
type Result struct {
	Buckets []Bucket `json:"buckets,omitempty"`
	Points  []Point  `json:"points,omitempty"`
	Total   int      `json:"total"`   // rows considered
	Skipped int      `json:"skipped"` // rows dropped for empty or non-numeric cells
}

// Empty reports whether there is nothing to draw
func (r Result) Empty() bool {
	return len(r.Buckets) == 0 && len(r.Points) == 0
}

// Sum adds every bucket value
func (r Result) Sum() float64 {
	total := 0.0
	for _, b := range r.Buckets {
		total += b.Value
	}
	return total
}

// ValueCounts counts non-empty values of col, descending by count.
// Ties keep first-appearance order.
func ValueCounts(t *institution.Table, col string) Result {
	res := Result{Total: t.Len()}
	cells, ok := t.Column(col)
	if !ok {
		return res
	}

	index := make(map[string]int)
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			res.Skipped++
			continue
		}
		i, seen := index[c]
		if !seen {
			i = len(res.Buckets)
			index[c] = i
			res.Buckets = append(res.Buckets, Bucket{Label: c})
		}
		res.Buckets[i].Count++
		res.Buckets[i].Value++
	}

	sort.SliceStable(res.Buckets, func(a, b int) bool {
		return res.Buckets[a].Count > res.Buckets[b].Count
	})
	return res
}

// grouped collects numeric values per non-empty key; keys come back sorted
func grouped(t *institution.Table, key, value string) (map[string][]float64, []string, Result) {
	res := Result{Total: t.Len()}
	groups := make(map[string][]float64)
	if !t.Has(key, value) {
		return groups, nil, res
	}

	for _, row := range t.Rows {
		k := strings.TrimSpace(row[key])
		v, ok := institution.ParseNumber(row[value])
		if k == "" || !ok {
			res.Skipped++
			continue
		}
		groups[k] = append(groups[k], v)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys, res
}

// GroupSum sums numeric value per key, ordered by key ascending
func GroupSum(t *institution.Table, key, value string) Result {
	groups, keys, res := grouped(t, key, value)
	for _, k := range keys {
		sum, _ := stats.Sum(groups[k])
		res.Buckets = append(res.Buckets, Bucket{Label: k, Value: sum, Count: len(groups[k])})
	}
	return res
}

// GroupMean averages numeric value per key, ordered by key ascending
func GroupMean(t *institution.Table, key, value string) Result {
	groups, keys, res := grouped(t, key, value)
	for _, k := range keys {
		mean, err := stats.Mean(groups[k])
		if err != nil {
			continue
		}
		res.Buckets = append(res.Buckets, Bucket{Label: k, Value: mean, Count: len(groups[k])})
	}
	return res
}

// SortDesc orders buckets by value descending; equal values keep their order
func SortDesc(r Result) Result {
	out := r
	out.Buckets = append([]Bucket(nil), r.Buckets...)
	sort.SliceStable(out.Buckets, func(a, b int) bool {
		return out.Buckets[a].Value > out.Buckets[b].Value
	})
	return out
}

// TopN keeps the n largest buckets
func TopN(r Result, n int) Result {
	out := SortDesc(r)
	if n >= 0 && len(out.Buckets) > n {
		out.Buckets = out.Buckets[:n]
	}
	return out
}

// Pairs collects rows where both x and y are numeric, in row order
func Pairs(t *institution.Table, x, y string) Result {
	res := Result{Total: t.Len()}
	if !t.Has(x, y) {
		return res
	}
	for _, row := range t.Rows {
		xv, okX := institution.ParseNumber(row[x])
		yv, okY := institution.ParseNumber(row[y])
		if !okX || !okY {
			res.Skipped++
			continue
		}
		res.Points = append(res.Points, Point{X: xv, Y: yv})
	}
	return res
}

// Correlation returns Pearson's r of the points; false when undefined
func Correlation(points []Point) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, false
	}
	return stat.Correlation(xs, ys, nil), true
}

// Summary describes one numeric column
type Summary struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Skipped int     `json:"skipped"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"std_dev"`
}

// Describe summarizes a numeric column; false when the column is absent or has no numbers
func Describe(t *institution.Table, col string) (Summary, bool) {
	s := Summary{Column: col}
	cells, ok := t.Column(col)
	if !ok {
		return s, false
	}

	values := make([]float64, 0, len(cells))
	for _, c := range cells {
		if v, ok := institution.ParseNumber(c); ok {
			values = append(values, v)
		} else {
			s.Skipped++
		}
	}
	if len(values) == 0 {
		return s, false
	}

	s.Count = len(values)
	s.Mean, _ = stats.Mean(values)
	s.Median, _ = stats.Median(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	// sample standard deviation, as pandas describe() reports it
	if len(values) > 1 {
		s.StdDev, _ = stats.StandardDeviationSample(values)
	}
	return s, true
}
