package magnet

import (
	"errors"
	"fmt"
)

// ErrInvalidParams wraps every widget parameter rejection.
var ErrInvalidParams = errors.New("INVALID_PREVIEW_PARAMS")

// Params holds the adjustable inputs of whichever widget is shown. Only the
// section matching the template is used.
type Params struct {
	Scenario   *ScenarioParams   `json:"scenario,omitempty"`
	Cost       *CostParams       `json:"cost,omitempty"`
	Compliance *ComplianceParams `json:"compliance,omitempty"`
	Benchmark  *BenchmarkParams  `json:"benchmark,omitempty"`
	Analyzed   bool              `json:"analyzed"`
}

// DefaultParams returns the initial inputs for id.
func DefaultParams(id TemplateID) Params {
	switch id {
	case ScenarioSimulator:
		p := defaultScenarioParams()
		return Params{Scenario: &p}
	case CostOptimizer:
		p := defaultCostParams()
		return Params{Cost: &p}
	case ComplianceRadar:
		p := defaultComplianceParams()
		return Params{Compliance: &p}
	case BenchmarkGrader:
		p := defaultBenchmarkParams()
		return Params{Benchmark: &p}
	default:
		return Params{}
	}
}

// Merge overlays the sections present in update onto p and clears the
// analyzed flag, so a changed input needs a fresh analyze action.
func (p Params) Merge(update Params) Params {
	out := p
	if update.Scenario != nil {
		s := *update.Scenario
		out.Scenario = &s
	}
	if update.Cost != nil {
		c := *update.Cost
		if out.Cost != nil && c.Seed == 0 {
			c.Seed = out.Cost.Seed
		}
		out.Cost = &c
	}
	if update.Compliance != nil {
		c := *update.Compliance
		out.Compliance = &c
	}
	if update.Benchmark != nil {
		b := *update.Benchmark
		out.Benchmark = &b
	}
	out.Analyzed = false
	return out
}

// Validate checks the section used by id.
func (p Params) Validate(id TemplateID) error {
	switch id {
	case ScenarioSimulator:
		if p.Scenario != nil {
			return p.Scenario.validate()
		}
	case CostOptimizer:
		if p.Cost != nil {
			return p.Cost.validate()
		}
	case ComplianceRadar:
		if p.Compliance != nil {
			return p.Compliance.validate()
		}
	case BenchmarkGrader:
		if p.Benchmark != nil {
			return p.Benchmark.validate()
		}
	}
	return nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
