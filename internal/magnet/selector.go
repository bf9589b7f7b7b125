package magnet

import "strings"

type keywordGroup struct {
	template TemplateID
	words    []string
}

// Groups are checked in order; the first group with any substring hit wins.
var keywordGroups = []keywordGroup{
	{CostOptimizer, []string{"budget", "cost", "spend"}},
	{ComplianceRadar, []string{"compliance", "risk", "regulation"}},
	{BenchmarkGrader, []string{"benchmark", "compare", "competition"}},
	{OpportunityForecaster, []string{"forecast", "predict", "future"}},
	{SkillGapMatrix, []string{"training", "skills", "learning"}},
	{DataVisualizer, []string{"data", "analysis", "insight"}},
	{ROIRiskExplorer, []string{"roi", "return", "investment"}},
}

// Select maps the answers to a template by ordered keyword matching.
func Select(in Input) TemplateID {
	id, _ := match(in)
	return id
}

// MatchedKeyword returns the keyword that decided Select, or "" when the
// default template was used.
func MatchedKeyword(in Input) string {
	_, kw := match(in)
	return kw
}

func match(in Input) (TemplateID, string) {
	text := strings.ToLower(in.Text())
	for _, group := range keywordGroups {
		for _, w := range group.words {
			if strings.Contains(text, w) {
				return group.template, w
			}
		}
	}
	return DefaultTemplate, ""
}
