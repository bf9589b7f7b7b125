package magnet

import (
	"fmt"
)

// Render dispatches to the widget for id. Ids without a widget, and ids
// outside the catalog, get the placeholder view.
func Render(id TemplateID, in Input, params Params) (*Preview, error) {
	if err := params.Validate(id); err != nil {
		return nil, err
	}

	switch id {
	case ScenarioSimulator:
		p := defaultScenarioParams()
		if params.Scenario != nil {
			p = *params.Scenario
		}
		return renderScenario(in, p, params.Analyzed), nil
	case CostOptimizer:
		p := defaultCostParams()
		if params.Cost != nil {
			p = *params.Cost
		}
		return renderCostOptimizer(in, p, params.Analyzed), nil
	case ComplianceRadar:
		p := defaultComplianceParams()
		if params.Compliance != nil {
			p = *params.Compliance
		}
		return renderCompliance(in, p, params.Analyzed), nil
	case BenchmarkGrader:
		p := defaultBenchmarkParams()
		if params.Benchmark != nil {
			p = *params.Benchmark
		}
		return renderBenchmark(in, p, params.Analyzed), nil
	default:
		return renderPlaceholder(id), nil
	}
}

func renderPlaceholder(id TemplateID) *Preview {
	name := id.Name()
	pv := newPreview(id, fmt.Sprintf("Preview for %s is being generated...", name),
		"Complete the form below to get the full version.")
	pv.Placeholder = true
	return pv
}
