package magnet

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const previewHeading = "Your Personalized Preview"

type ChartType string

const (
	ChartLine  ChartType = "line"
	ChartBar   ChartType = "bar"
	ChartRadar ChartType = "radar"
)

// Chart is the data a client charting library needs. Rendering is the
// client's job.
type Chart struct {
	Type     ChartType `json:"type"`
	Title    string    `json:"title,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Metric is a derived number with its display form.
type Metric struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Note    string  `json:"note,omitempty"`
}

// Field describes one adjustable widget input.
type Field struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Type    string      `json:"type"`
	Value   interface{} `json:"value"`
	Min     *float64    `json:"min,omitempty"`
	Max     *float64    `json:"max,omitempty"`
	Step    *float64    `json:"step,omitempty"`
	Options []string    `json:"options,omitempty"`
}

// Preview is a rendered widget. Chart, Metrics and Insights are only set
// once the widget has been analyzed.
type Preview struct {
	TemplateID     TemplateID `json:"templateId"`
	TemplateCode   string     `json:"templateCode,omitempty"`
	TemplateName   string     `json:"templateName"`
	Heading        string     `json:"heading"`
	Recommendation string     `json:"recommendation"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Form           []Field    `json:"form,omitempty"`
	ActionLabel    string     `json:"actionLabel,omitempty"`
	Analyzed       bool       `json:"analyzed"`
	Chart          *Chart     `json:"chart,omitempty"`
	Metrics        []Metric   `json:"metrics,omitempty"`
	Insights       []string   `json:"insights,omitempty"`
	Placeholder    bool       `json:"placeholder"`
}

// Metric returns the metric with the given key.
func (p *Preview) Metric(key string) (Metric, bool) {
	for _, m := range p.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

func newPreview(id TemplateID, title, description string) *Preview {
	return &Preview{
		TemplateID:     id,
		TemplateCode:   id.Code(),
		TemplateName:   id.Name(),
		Heading:        previewHeading,
		Recommendation: fmt.Sprintf("Based on your answers, we recommend our %s solution.", id.Name()),
		Title:          title,
		Description:    description,
	}
}

var printer = message.NewPrinter(language.English)

// round matches the half-up rounding used for every displayed number.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round1(x float64) float64 {
	return round(x*10) / 10
}

// formatNumber renders x with thousands separators and at most two decimals.
func formatNumber(x float64) string {
	if x == math.Trunc(x) {
		return printer.Sprintf("%.0f", x)
	}
	return printer.Sprintf("%.2f", x)
}

func formatMoney(x float64) string {
	return "$" + formatNumber(x)
}

func floatPtr(v float64) *float64 { return &v }
