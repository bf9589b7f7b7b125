package magnet

import (
	"fmt"
	"sort"
)

var (
	Regions    = []string{"North America", "Europe", "Asia Pacific"}
	Industries = []string{"Finance", "Healthcare", "Technology", "Manufacturing"}
)

const maxComplianceScore = 5

type ComplianceParams struct {
	Region   string `json:"region"`
	Industry string `json:"industry"`
}

func defaultComplianceParams() ComplianceParams {
	return ComplianceParams{Region: "North America", Industry: "Finance"}
}

func (p ComplianceParams) validate() error {
	if !contains(Regions, p.Region) {
		return invalidf("unknown region %q", p.Region)
	}
	if !contains(Industries, p.Industry) {
		return invalidf("unknown industry %q", p.Industry)
	}
	return nil
}

// ComplianceProfile is the lookup result for a region and industry.
type ComplianceProfile struct {
	Areas           []string
	CurrentState    []float64
	IndustryAverage []float64
	BestPractice    []float64
}

// LookupCompliance returns the fixed sample profile. Only North America
// with Finance and any Europe combination have dedicated tables.
func LookupCompliance(region, industry string) ComplianceProfile {
	var prof ComplianceProfile
	switch {
	case region == "North America" && industry == "Finance":
		prof.CurrentState = []float64{2, 4, 3, 5, 1, 3}
		prof.IndustryAverage = []float64{3, 3, 4, 4, 3, 4}
	case region == "Europe":
		prof.CurrentState = []float64{3, 2, 4, 3, 2, 4}
		prof.IndustryAverage = []float64{4, 4, 4, 3, 4, 5}
	default:
		prof.CurrentState = []float64{2, 3, 3, 4, 2, 3}
		prof.IndustryAverage = []float64{3, 4, 3, 4, 4, 4}
	}
	prof.BestPractice = []float64{5, 5, 5, 5, 5, 5}

	switch industry {
	case "Finance":
		prof.Areas = []string{"Data Privacy", "Fraud Prevention", "KYC/AML", "Reporting", "Cybersecurity", "Governance"}
	case "Healthcare":
		prof.Areas = []string{"HIPAA", "Data Security", "Patient Privacy", "Documentation", "Access Controls", "Training"}
	default:
		prof.Areas = []string{"Data Protection", "Risk Management", "Security", "Documentation", "Monitoring", "Governance"}
	}
	return prof
}

// RiskScore is the current state as a percentage of the maximum score.
func RiskScore(current []float64) float64 {
	var sum float64
	for _, v := range current {
		sum += v
	}
	return round(sum / float64(len(current)*maxComplianceScore) * 100)
}

// RiskLevel grades a risk score; a higher score means lower risk.
func RiskLevel(score float64) string {
	switch {
	case score >= 80:
		return "Low"
	case score >= 60:
		return "Moderate"
	default:
		return "High"
	}
}

// WeakestAreas returns the n lowest scoring areas, ties in area order.
func WeakestAreas(prof ComplianceProfile, n int) []string {
	idx := make([]int, len(prof.CurrentState))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return prof.CurrentState[idx[a]] < prof.CurrentState[idx[b]]
	})
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = prof.Areas[idx[i]]
	}
	return out
}

func renderCompliance(_ Input, p ComplianceParams, analyzed bool) *Preview {
	pv := newPreview(ComplianceRadar, "Compliance & Risk Radar",
		"Analyze your compliance status across key risk areas and compare against industry standards.")
	pv.ActionLabel = "Analyze Compliance"
	pv.Form = []Field{
		{Name: "region", Label: "Region", Type: "select", Value: p.Region, Options: Regions},
		{Name: "industry", Label: "Industry", Type: "select", Value: p.Industry, Options: Industries},
	}

	if !analyzed {
		return pv
	}
	pv.Analyzed = true

	prof := LookupCompliance(p.Region, p.Industry)
	pv.Chart = &Chart{
		Type:   ChartRadar,
		Labels: prof.Areas,
		Datasets: []Dataset{
			{Label: "Your Current State", Data: prof.CurrentState},
			{Label: "Industry Average", Data: prof.IndustryAverage},
			{Label: "Best Practice", Data: prof.BestPractice},
		},
	}

	score := RiskScore(prof.CurrentState)
	level := RiskLevel(score)
	weakest := WeakestAreas(prof, 2)

	pv.Metrics = []Metric{
		{Key: "riskScore", Label: "Overall Risk Score", Value: score, Display: fmt.Sprintf("%.0f%%", score), Note: level + " Risk"},
		{Key: "complianceGaps", Label: "Key Compliance Gaps", Value: float64(len(weakest)), Display: weakest[0] + ", " + weakest[1]},
		{Key: "recommendedActions", Label: "Recommended Actions", Value: 2, Display: "Targeted Assessment, Compliance Training"},
	}
	pv.Insights = []string{
		fmt.Sprintf("Based on your %s profile in %s, your organization has key vulnerabilities in %s and %s. "+
			"These areas fall below industry averages and represent significant compliance risk.",
			p.Industry, p.Region, weakest[0], weakest[1]),
		"Our full compliance assessment would provide a detailed roadmap to close these gaps, " +
			"bringing your organization up to industry standards and best practices.",
	}
	return pv
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
