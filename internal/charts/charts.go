// Package charts defines the fixed battery of institution charts. Each chart
// names the columns it needs and the aggregate it draws; evaluation never
// fails, a chart whose columns are absent reports itself as missing.
package charts

import (
	"instviz/domain/institution"
	"instviz/internal/aggregate"
)

// Kind identifies how a chart is drawn
type Kind string

const (
	KindPie     Kind = "pie"
	KindDonut   Kind = "donut"
	KindBar     Kind = "bar" // horizontal bars
	KindColumn  Kind = "column"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindFunnel  Kind = "funnel"
)

// Horizontal reports whether category labels run down the Y axis
func (k Kind) Horizontal() bool {
	return k == KindBar || k == KindFunnel
}

// TopLimit caps the ranked charts
const TopLimit = 10

// Chart describes one chart of the battery
type Chart struct {
	ID       string
	Title    string
	Kind     Kind
	Required []string
	XLabel   string
	YLabel   string
	Compute  func(t *institution.Table) aggregate.Result
}

// Outcome is the evaluated state of one chart
type Outcome struct {
	Chart     Chart
	Missing   []string
	Message   string
	Aggregate aggregate.Result
}

// IsMissing reports whether the chart could not be computed
func (o Outcome) IsMissing() bool {
	return len(o.Missing) > 0
}

// Battery returns the chart catalogue in display order
func Battery() []Chart {
	return []Chart{
		{
			ID:       "trainer-qualification",
			Title:    "Trainer Qualification Distribution",
			Kind:     KindPie,
			Required: []string{institution.ColTrainerQualification},
			Compute: func(t *institution.Table) aggregate.Result {
				return aggregate.ValueCounts(t, institution.ColTrainerQualification)
			},
		},
		{
			ID:       "institutions-by-state",
			Title:    "Institutions by State",
			Kind:     KindBar,
			Required: []string{institution.ColState},
			XLabel:   "Count",
			YLabel:   "State",
			Compute: func(t *institution.Table) aggregate.Result {
				return aggregate.ValueCounts(t, institution.ColState)
			},
		},
		{
			ID:       "top-cities",
			Title:    "Top 10 Cities by Total Students",
			Kind:     KindColumn,
			Required: []string{institution.ColCity, institution.ColTotalStudents},
			XLabel:   "City",
			YLabel:   "Total Students",
			Compute: func(t *institution.Table) aggregate.Result {
				sums := aggregate.GroupSum(t, institution.ColCity, institution.ColTotalStudents)
				return aggregate.TopN(sums, TopLimit)
			},
		},
		{
			ID:       "marks-vs-students",
			Title:    "Avg. Marks vs Total Students",
			Kind:     KindScatter,
			Required: []string{institution.ColTotalStudents, institution.ColAverageMarks},
			XLabel:   "Total Students",
			YLabel:   "Average Marks",
			Compute: func(t *institution.Table) aggregate.Result {
				return aggregate.Pairs(t, institution.ColTotalStudents, institution.ColAverageMarks)
			},
		},
		{
			ID:       "marks-by-state",
			Title:    "Average Marks by State",
			Kind:     KindLine,
			Required: []string{institution.ColState, institution.ColAverageMarks},
			XLabel:   "State",
			YLabel:   "Average Marks",
			Compute: func(t *institution.Table) aggregate.Result {
				return aggregate.GroupMean(t, institution.ColState, institution.ColAverageMarks)
			},
		},
		{
			ID:       "institution-type",
			Title:    "School vs College Split",
			Kind:     KindDonut,
			Required: []string{institution.ColInstitutionType},
			Compute: func(t *institution.Table) aggregate.Result {
				return aggregate.ValueCounts(t, institution.ColInstitutionType)
			},
		},
		{
			ID:       "top-institutions",
			Title:    "Top 10 Institutions by Total Students",
			Kind:     KindFunnel,
			Required: []string{institution.ColInstitutionName, institution.ColTotalStudents},
			XLabel:   "Total Students",
			Compute: func(t *institution.Table) aggregate.Result {
				sums := aggregate.GroupSum(t, institution.ColInstitutionName, institution.ColTotalStudents)
				return aggregate.TopN(sums, TopLimit)
			},
		},
	}
}

// Lookup finds a battery chart by id
func Lookup(id string) (Chart, bool) {
	for _, c := range Battery() {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// Evaluate computes one chart against the table
func Evaluate(t *institution.Table, c Chart) Outcome {
	out := Outcome{Chart: c}
	if missing := t.Missing(c.Required...); len(missing) > 0 {
		out.Missing = missing
		out.Message = institution.MissingColumnMessage(c.Required)
		return out
	}
	out.Aggregate = c.Compute(t)
	return out
}

// EvaluateAll computes the whole battery in display order
func EvaluateAll(t *institution.Table) []Outcome {
	battery := Battery()
	outcomes := make([]Outcome, len(battery))
	for i, c := range battery {
		outcomes[i] = Evaluate(t, c)
	}
	return outcomes
}
