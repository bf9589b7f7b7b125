package magnet

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

const defaultResources = `Software Subscription A: $12000
Cloud Services: $24000
Developer Tools: $8500
Marketing Tools: $7200
Data Storage: $18000`

const maxResourceLines = 100

var savingStrategies = []string{
	"vendor negotiation and right-sizing",
	"consolidation and removal of unused features",
	"migration to alternative solutions",
}

// CostParams holds the resource list and the seed of the last optimize
// action. A zero seed means the list has not been optimized yet.
type CostParams struct {
	Resources string `json:"resources"`
	Seed      int64  `json:"seed,omitempty"`
}

func defaultCostParams() CostParams {
	return CostParams{Resources: defaultResources}
}

func (p CostParams) validate() error {
	if n := len(ParseResources(p.Resources)); n > maxResourceLines {
		return invalidf("at most %d resource lines are supported, got %d", maxResourceLines, n)
	}
	return nil
}

// ResourceItem is one parsed "name: cost" line.
type ResourceItem struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// OptimizedItem carries the simulated saving for one resource.
type OptimizedItem struct {
	ResourceItem
	OptimizedCost float64 `json:"optimizedCost"`
	Saving        float64 `json:"saving"`
	SavingPercent float64 `json:"savingPercent"`
}

// ParseResources reads one resource per line, sorted by cost descending.
// Blank lines and lines without a usable number after the colon are dropped.
func ParseResources(text string) []ResourceItem {
	var items []ResourceItem
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, ":")
		cost, ok := parseCost(rest)
		if !ok {
			continue
		}
		items = append(items, ResourceItem{Name: strings.TrimSpace(name), Cost: cost})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Cost > items[j].Cost })
	return items
}

func parseCost(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if !strings.ContainsAny(cleaned, "0123456789") {
		return 0, false
	}
	cost, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}

// Optimize applies a 10-30% saving to every item. The savings are a pure
// function of items and seed.
func Optimize(items []ResourceItem, seed int64) []OptimizedItem {
	rng := rand.New(rand.NewSource(seed))
	out := make([]OptimizedItem, len(items))
	for i, item := range items {
		pct := 0.1 + rng.Float64()*0.2
		optimized := item.Cost * (1 - pct)
		out[i] = OptimizedItem{
			ResourceItem:  item,
			OptimizedCost: optimized,
			Saving:        item.Cost - optimized,
			SavingPercent: pct * 100,
		}
	}
	return out
}

func renderCostOptimizer(_ Input, p CostParams, analyzed bool) *Preview {
	pv := newPreview(CostOptimizer, "Resource-Cost Optimizer",
		"List your current resources and costs to identify optimization opportunities.")
	pv.ActionLabel = "Analyze & Optimize"
	pv.Form = []Field{
		{Name: "resources", Label: "Enter your resources (one per line with cost)", Type: "textarea", Value: p.Resources},
	}

	if !analyzed {
		return pv
	}
	pv.Analyzed = true

	items := ParseResources(p.Resources)
	optimized := Optimize(items, p.Seed)

	chart := &Chart{Type: ChartBar, Title: "Cost Comparison", Labels: make([]string, len(items))}
	current := Dataset{Label: "Current Cost", Data: make([]float64, len(items))}
	after := Dataset{Label: "Optimized Cost", Data: make([]float64, len(items))}
	var totalCurrent, totalOptimized float64
	for i, item := range optimized {
		chart.Labels[i] = item.Name
		current.Data[i] = item.Cost
		after.Data[i] = item.OptimizedCost
		totalCurrent += item.Cost
		totalOptimized += item.OptimizedCost
	}
	chart.Datasets = []Dataset{current, after}
	pv.Chart = chart

	savings := totalCurrent - totalOptimized
	var savingsPct float64
	if totalCurrent != 0 {
		savingsPct = round1(savings / totalCurrent * 100)
	}

	pv.Metrics = []Metric{
		{Key: "currentCost", Label: "Current Annual Cost", Value: totalCurrent, Display: formatMoney(totalCurrent)},
		{Key: "optimizedCost", Label: "Optimized Annual Cost", Value: totalOptimized, Display: formatMoney(round(totalOptimized))},
		{Key: "savings", Label: "Potential Savings", Value: savings, Display: formatMoney(round(savings)),
			Note: fmt.Sprintf("%.1f%% Reduction", savingsPct)},
		{Key: "savingsPercent", Label: "Reduction", Value: savingsPct, Display: fmt.Sprintf("%.1f%%", savingsPct)},
	}

	for i, item := range optimized {
		if i == 3 {
			break
		}
		pv.Insights = append(pv.Insights, fmt.Sprintf("%s: Save %s (%.0f%%) through %s",
			item.Name, formatMoney(round(item.Saving)), round(item.SavingPercent), savingStrategies[i%len(savingStrategies)]))
	}
	pv.Insights = append(pv.Insights,
		"Complete assessment can identify additional savings across your entire resource stack")
	return pv
}
