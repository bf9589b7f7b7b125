package magnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		want    TemplateID
		keyword string
	}{
		{
			name:    "budget resolves to cost optimizer",
			input:   Input{Trigger: "Our budget was cut", Job: "plan", Pain: "slow", Desire: "speed"},
			want:    CostOptimizer,
			keyword: "budget",
		},
		{
			name:    "budget outranks compliance",
			input:   Input{Trigger: "compliance audit", Job: "cut spend"},
			want:    CostOptimizer,
			keyword: "spend",
		},
		{
			name:    "compliance outranks benchmark",
			input:   Input{Trigger: "new compliance rules", Desire: "benchmark against peers"},
			want:    ComplianceRadar,
			keyword: "compliance",
		},
		{
			name:  "benchmark",
			input: Input{Job: "We need to COMPARE ourselves"},
			want:  BenchmarkGrader,
		},
		{
			name:  "forecast",
			input: Input{Desire: "predict demand"},
			want:  OpportunityForecaster,
		},
		{
			name:  "skills",
			input: Input{Pain: "no training program"},
			want:  SkillGapMatrix,
		},
		{
			name:  "data",
			input: Input{Pain: "dashboards lack insight"},
			want:  DataVisualizer,
		},
		{
			name:  "roi",
			input: Input{Desire: "better return"},
			want:  ROIRiskExplorer,
		},
		{
			name:  "answers are joined with spaces",
			input: Input{Trigger: "ri", Job: "sk"},
			want:  DefaultTemplate,
		},
		{
			name:    "no keyword falls back to scenario simulator",
			input:   Input{Trigger: "We want happier people at work", Job: "hire", Pain: "slow", Desire: "growth"},
			want:    ScenarioSimulator,
			keyword: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.input))
			if tt.keyword != "" || tt.want == DefaultTemplate {
				assert.Equal(t, tt.keyword, MatchedKeyword(tt.input))
			}
		})
	}
}

func TestSelect_Deterministic(t *testing.T) {
	in := Input{Trigger: "risk", Job: "data", Pain: "roi", Desire: "training"}
	first := Select(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Select(in))
	}
	assert.Equal(t, ComplianceRadar, first)
}

func TestTemplateCatalog(t *testing.T) {
	cat := Catalog()
	assert.Len(t, cat, 12)

	interactive := 0
	for _, info := range cat {
		assert.True(t, info.ID.Valid())
		if info.Interactive {
			interactive++
		}
	}
	assert.Equal(t, 4, interactive)

	assert.Equal(t, "GM-03", ComplianceRadar.Code())
	assert.Equal(t, "Compliance & Risk Radar", ComplianceRadar.Name())
	assert.Equal(t, UnknownTemplateName, TemplateID("nope").Name())
	assert.Equal(t, "", TemplateID("nope").Code())

	id, ok := ParseTemplateID("GM-12")
	assert.True(t, ok)
	assert.Equal(t, ROIRiskExplorer, id)

	id, ok = ParseTemplateID("cost-optimizer")
	assert.True(t, ok)
	assert.Equal(t, CostOptimizer, id)

	_, ok = ParseTemplateID("GM-99")
	assert.False(t, ok)
}
