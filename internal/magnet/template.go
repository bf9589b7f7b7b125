// Package magnet selects and renders the preview widgets ("magnets") shown
// to a visitor before the contact form.
package magnet

import (
	"strings"
)

// TemplateID identifies one of the twelve magnet templates.
type TemplateID string

const (
	ScenarioSimulator     TemplateID = "scenario-simulator"
	CostOptimizer         TemplateID = "cost-optimizer"
	ComplianceRadar       TemplateID = "compliance-radar"
	BenchmarkGrader       TemplateID = "benchmark-grader"
	InteractiveDiagnostic TemplateID = "interactive-diagnostic"
	OpportunityForecaster TemplateID = "opportunity-forecaster"
	ActionPlanBuilder     TemplateID = "action-plan-builder"
	SkillGapMatrix        TemplateID = "skill-gap-matrix"
	DataVisualizer        TemplateID = "data-visualizer"
	POCSandbox            TemplateID = "poc-sandbox"
	AIConversationDemo    TemplateID = "ai-conversation-demo"
	ROIRiskExplorer       TemplateID = "roi-risk-explorer"

	// DefaultTemplate is used when nothing in the answers matches.
	DefaultTemplate = ScenarioSimulator
)

// UnknownTemplateName is shown for ids outside the catalog.
const UnknownTemplateName = "Personalized Solution"

// TemplateInfo describes one catalog entry.
type TemplateInfo struct {
	ID          TemplateID `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Interactive bool       `json:"interactive"`
}

var catalog = []TemplateInfo{
	{ScenarioSimulator, "GM-01", "Scenario Simulator", true},
	{CostOptimizer, "GM-02", "Resource-Cost Optimizer", true},
	{ComplianceRadar, "GM-03", "Compliance & Risk Radar", true},
	{BenchmarkGrader, "GM-04", "Performance Benchmark Grader", true},
	{InteractiveDiagnostic, "GM-05", "Interactive Diagnostic", false},
	{OpportunityForecaster, "GM-06", "Opportunity Forecaster", false},
	{ActionPlanBuilder, "GM-07", "Personalized Action-Plan Builder", false},
	{SkillGapMatrix, "GM-08", "Skill Gap Matrix", false},
	{DataVisualizer, "GM-09", "Insight-from-Data Visualizer", false},
	{POCSandbox, "GM-10", "Instant Proof-of-Concept Sandbox", false},
	{AIConversationDemo, "GM-11", "AI Conversation Demo", false},
	{ROIRiskExplorer, "GM-12", "ROI-vs-Risk Quadrant Explorer", false},
}

// Catalog returns all templates in code order.
func Catalog() []TemplateInfo {
	out := make([]TemplateInfo, len(catalog))
	copy(out, catalog)
	return out
}

func lookup(id TemplateID) (TemplateInfo, bool) {
	for _, info := range catalog {
		if info.ID == id {
			return info, true
		}
	}
	return TemplateInfo{}, false
}

// Valid reports whether id belongs to the catalog.
func (id TemplateID) Valid() bool {
	_, ok := lookup(id)
	return ok
}

// Code returns the GM-xx catalog code, or "" for unknown ids.
func (id TemplateID) Code() string {
	info, _ := lookup(id)
	return info.Code
}

// Name returns the display name.
func (id TemplateID) Name() string {
	if info, ok := lookup(id); ok {
		return info.Name
	}
	return UnknownTemplateName
}

// ParseTemplateID accepts either a symbolic id or a GM-xx code.
func ParseTemplateID(s string) (TemplateID, bool) {
	s = strings.TrimSpace(s)
	for _, info := range catalog {
		if string(info.ID) == s || strings.EqualFold(info.Code, s) {
			return info.ID, true
		}
	}
	return "", false
}

// Input is the read-only view of the visitor's answers that widgets and
// the selector receive. Contact details are never part of it.
type Input struct {
	Trigger string `json:"trigger"`
	Job     string `json:"job"`
	Pain    string `json:"pain"`
	Desire  string `json:"desire"`
}

// Text joins the four answers with single spaces.
func (in Input) Text() string {
	return strings.Join([]string{in.Trigger, in.Job, in.Pain, in.Desire}, " ")
}
