package magnet

import (
	"fmt"
	"strings"
)

const (
	defaultBudget    = 100000
	defaultTimeframe = 12
	maxTimeframe     = 36
)

// Monthly growth assumptions per scenario, applied linearly.
var scenarioRates = []struct {
	label string
	rate  float64
}{
	{"Conservative Approach", 0.02},
	{"Balanced Approach", 0.05},
	{"Optimized Approach", 0.08},
}

var (
	budgetKeywords = []string{"budget", "cost", "expense", "spending", "money"}
	timeKeywords   = []string{"time", "schedule", "deadline", "period", "month"}
)

type ScenarioParams struct {
	Budget    float64 `json:"budget"`
	Timeframe int     `json:"timeframe"`
}

func defaultScenarioParams() ScenarioParams {
	return ScenarioParams{Budget: defaultBudget, Timeframe: defaultTimeframe}
}

func (p ScenarioParams) validate() error {
	if p.Budget < 0 {
		return invalidf("budget must not be negative")
	}
	if p.Timeframe < 1 || p.Timeframe > maxTimeframe {
		return invalidf("timeframe must be between 1 and %d months", maxTimeframe)
	}
	return nil
}

// ScenarioSeries returns the month-by-month value of the three scenarios.
// Month i (0-based) is (budget/timeframe) * (1 + i*rate).
func ScenarioSeries(budget float64, timeframe int) [][]float64 {
	series := make([][]float64, len(scenarioRates))
	monthly := budget / float64(timeframe)
	for s, sc := range scenarioRates {
		data := make([]float64, timeframe)
		for i := range data {
			data[i] = monthly * (1 + float64(i)*sc.rate)
		}
		series[s] = data
	}
	return series
}

// answerKeywords lower-cases every space-separated word longer than four
// characters. Words must equal a keyword exactly to count.
func answerKeywords(in Input) map[string]bool {
	out := make(map[string]bool)
	for _, field := range []string{in.Trigger, in.Job, in.Pain, in.Desire} {
		for _, word := range strings.Split(field, " ") {
			if len(word) > 4 {
				out[strings.ToLower(word)] = true
			}
		}
	}
	return out
}

func hasAny(words map[string]bool, candidates []string) bool {
	for _, c := range candidates {
		if words[c] {
			return true
		}
	}
	return false
}

func renderScenario(in Input, p ScenarioParams, analyzed bool) *Preview {
	pv := newPreview(ScenarioSimulator, "Scenario Simulator",
		"Adjust the parameters below to see different outcomes for your specific situation.")
	pv.ActionLabel = "Simulate Scenarios"

	words := answerKeywords(in)
	budgetLabel := "Resource Allocation"
	if hasAny(words, budgetKeywords) {
		budgetLabel = "Allocated Budget"
	}
	timeLabel := "Planning Period (months)"
	if hasAny(words, timeKeywords) {
		timeLabel = "Project Timeframe (months)"
	}
	pv.Form = []Field{
		{Name: "budget", Label: budgetLabel, Type: "number", Value: p.Budget, Min: floatPtr(1000), Step: floatPtr(1000)},
		{Name: "timeframe", Label: timeLabel, Type: "number", Value: p.Timeframe, Min: floatPtr(1), Max: floatPtr(maxTimeframe)},
	}

	if !analyzed {
		return pv
	}
	pv.Analyzed = true

	series := ScenarioSeries(p.Budget, p.Timeframe)
	labels := make([]string, p.Timeframe)
	for i := range labels {
		labels[i] = fmt.Sprintf("Month %d", i+1)
	}
	chart := &Chart{Type: ChartLine, Title: "Scenario Comparison", Labels: labels}
	for s, sc := range scenarioRates {
		chart.Datasets = append(chart.Datasets, Dataset{Label: sc.label, Data: series[s]})
	}
	pv.Chart = chart

	// The ratio of the last months does not depend on the budget, so it is
	// taken from the growth factors to stay defined for a zero budget.
	last := float64(p.Timeframe - 1)
	uplift := round(((1+last*scenarioRates[2].rate)/(1+last*scenarioRates[0].rate) - 1) * 100)

	var maxReturn float64
	for _, v := range series[2] {
		maxReturn += v
	}
	maxReturn = round(maxReturn)

	pv.Metrics = []Metric{
		{Key: "optimizedUplift", Label: "Optimized vs Conservative", Value: uplift, Display: fmt.Sprintf("%.0f%%", uplift)},
		{Key: "maxReturn", Label: "Potential Maximum Return", Value: maxReturn, Display: formatMoney(maxReturn)},
	}
	pv.Insights = []string{
		fmt.Sprintf("The Optimized Approach could yield up to %.0f%% better results than the Conservative Approach", uplift),
		fmt.Sprintf("With your current parameters, the potential maximum return is %s", formatMoney(maxReturn)),
		"The Balanced Approach offers a good compromise between risk and return",
	}
	return pv
}
