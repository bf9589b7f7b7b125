package magnet

import (
	"fmt"
	"sort"
	"strings"
)

// KPI describes one benchmarked indicator.
type KPI struct {
	Key          string
	Label        string
	FormLabel    string
	Default      float64
	Industry     float64
	TopPerformer float64
	Min, Max     float64
}

// KPIs in display order.
var KPIs = []KPI{
	{"customerSatisfaction", "Customer Satisfaction", "Customer Satisfaction (0-100)", 76, 82, 92, 0, 100},
	{"employeeProductivity", "Employee Productivity", "Employee Productivity (0-100)", 68, 74, 88, 0, 100},
	{"operationalEfficiency", "Operational Efficiency", "Operational Efficiency (0-100)", 72, 78, 91, 0, 100},
	{"marketShare", "Market Share", "Market Share (%)", 12, 15, 24, 0, 100},
	{"revenueGrowth", "Revenue Growth", "Revenue Growth (%)", 8, 11, 18, -50, 100},
}

// BenchmarkParams maps KPI keys to the visitor's values.
type BenchmarkParams struct {
	KPIs map[string]float64 `json:"kpis"`
}

func defaultBenchmarkParams() BenchmarkParams {
	values := make(map[string]float64, len(KPIs))
	for _, k := range KPIs {
		values[k.Key] = k.Default
	}
	return BenchmarkParams{KPIs: values}
}

func (p BenchmarkParams) validate() error {
	for key := range p.KPIs {
		if kpiByKey(key) == nil {
			return invalidf("unknown kpi %q", key)
		}
	}
	for _, k := range KPIs {
		v, ok := p.KPIs[k.Key]
		if !ok {
			continue
		}
		if v < k.Min || v > k.Max {
			return invalidf("%s must be between %.0f and %.0f", k.Key, k.Min, k.Max)
		}
	}
	return nil
}

func kpiByKey(key string) *KPI {
	for i := range KPIs {
		if KPIs[i].Key == key {
			return &KPIs[i]
		}
	}
	return nil
}

// value falls back to the KPI default for keys the visitor never set.
func (p BenchmarkParams) value(k KPI) float64 {
	if v, ok := p.KPIs[k.Key]; ok {
		return v
	}
	return k.Default
}

// PerformanceScore averages each KPI as a percentage of the top performer.
func PerformanceScore(p BenchmarkParams) float64 {
	var total float64
	for _, k := range KPIs {
		total += p.value(k) / k.TopPerformer * 100
	}
	return round(total / float64(len(KPIs)))
}

// Grade returns the letter grade and its description.
func Grade(score float64) (string, string) {
	switch {
	case score >= 90:
		return "A", "Excellent"
	case score >= 80:
		return "B", "Good"
	case score >= 70:
		return "C", "Average"
	case score >= 60:
		return "D", "Below Average"
	default:
		return "F", "Needs Improvement"
	}
}

// CompetitivePosition buckets the performance score.
func CompetitivePosition(score float64) string {
	switch {
	case score >= 85:
		return "Leader"
	case score >= 70:
		return "Competitor"
	default:
		return "Challenger"
	}
}

// StrengthsAndWeaknesses compares each KPI against the industry average and
// returns up to two labels per side, strongest and weakest first.
func StrengthsAndWeaknesses(p BenchmarkParams) ([]string, []string) {
	type ratio struct {
		label string
		value float64
	}
	var above, below []ratio
	for _, k := range KPIs {
		r := ratio{k.Label, p.value(k) / k.Industry}
		if r.value >= 1 {
			above = append(above, r)
		} else {
			below = append(below, r)
		}
	}
	sort.SliceStable(above, func(i, j int) bool { return above[i].value > above[j].value })
	sort.SliceStable(below, func(i, j int) bool { return below[i].value < below[j].value })

	labels := func(rs []ratio) []string {
		out := []string{}
		for i := 0; i < len(rs) && i < 2; i++ {
			out = append(out, rs[i].label)
		}
		return out
	}
	return labels(above), labels(below)
}

func renderBenchmark(_ Input, p BenchmarkParams, analyzed bool) *Preview {
	pv := newPreview(BenchmarkGrader, "Performance Benchmark Grader",
		"Compare your key performance indicators against industry benchmarks.")
	pv.ActionLabel = "Analyze Performance"
	for _, k := range KPIs {
		pv.Form = append(pv.Form, Field{
			Name: k.Key, Label: k.FormLabel, Type: "number", Value: p.value(k),
			Min: floatPtr(k.Min), Max: floatPtr(k.Max),
		})
	}

	if !analyzed {
		return pv
	}
	pv.Analyzed = true

	chart := &Chart{Type: ChartBar, Title: "Performance Benchmark Comparison"}
	yours := Dataset{Label: "Your Performance"}
	industry := Dataset{Label: "Industry Average"}
	top := Dataset{Label: "Top Performers"}
	for _, k := range KPIs {
		chart.Labels = append(chart.Labels, k.Label)
		yours.Data = append(yours.Data, p.value(k))
		industry.Data = append(industry.Data, k.Industry)
		top.Data = append(top.Data, k.TopPerformer)
	}
	chart.Datasets = []Dataset{yours, industry, top}
	pv.Chart = chart

	score := PerformanceScore(p)
	letter, description := Grade(score)
	relative := "Below"
	if score >= 75 {
		relative = "Above"
	}
	strengths, weaknesses := StrengthsAndWeaknesses(p)

	pv.Metrics = []Metric{
		{Key: "grade", Label: "Performance Grade", Value: score, Display: letter, Note: description},
		{Key: "score", Label: "Overall Score", Value: score, Display: fmt.Sprintf("%.0f/100", score), Note: relative + " Industry Average"},
		{Key: "position", Label: "Competitive Position", Value: score, Display: CompetitivePosition(score)},
	}

	if len(strengths) > 0 {
		pv.Insights = append(pv.Insights, "Your strengths: "+strings.Join(strengths, " and "))
	} else {
		pv.Insights = append(pv.Insights, "No areas currently above industry average")
	}
	if len(weaknesses) > 0 {
		pv.Insights = append(pv.Insights, fmt.Sprintf(
			"Based on your performance data, we recommend focusing on improving %s.", strings.Join(weaknesses, " and ")))
	}
	return pv
}
