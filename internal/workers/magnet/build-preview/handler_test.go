package buildpreview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/magnet"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func createInput(templateID string, params map[string]interface{}) *Input {
	return &Input{
		TemplateID: templateID,
		Trigger:    "Spending is out of control",
		Job:        "Plan next year",
		Pain:       "No visibility",
		Desire:     "Predictable costs",
		Params:     params,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Defaults(t *testing.T) {
	out, err := createTestHandler(t).Execute(context.Background(), createInput("GM-01", nil))
	require.NoError(t, err)
	require.NotNil(t, out.Preview)
	assert.Equal(t, magnet.ScenarioSimulator, out.Preview.TemplateID)
	assert.False(t, out.Preview.Analyzed)
}

func TestHandler_Execute_AnalyzedScenario(t *testing.T) {
	out, err := createTestHandler(t).Execute(context.Background(), createInput("scenario-simulator", map[string]interface{}{
		"scenario": map[string]interface{}{"budget": 100000.0, "timeframe": 12.0},
		"analyzed": true,
	}))
	require.NoError(t, err)
	assert.True(t, out.Preview.Analyzed)

	uplift, ok := out.Preview.Metric("optimizedUplift")
	require.True(t, ok)
	assert.Equal(t, 54.0, uplift.Value)
}

func TestHandler_Execute_ComplianceParams(t *testing.T) {
	out, err := createTestHandler(t).Execute(context.Background(), createInput("compliance-radar", map[string]interface{}{
		"compliance": map[string]interface{}{"region": "Asia Pacific", "industry": "Healthcare"},
		"analyzed":   true,
	}))
	require.NoError(t, err)

	risk, ok := out.Preview.Metric("riskScore")
	require.True(t, ok)
	assert.Equal(t, 57.0, risk.Value)
}

func TestHandler_Execute_Placeholder(t *testing.T) {
	out, err := createTestHandler(t).Execute(context.Background(), createInput("GM-07", map[string]interface{}{"analyzed": true}))
	require.NoError(t, err)
	assert.True(t, out.Preview.Placeholder)
	assert.Equal(t, "Preview for Personalized Action-Plan Builder is being generated...", out.Preview.Title)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{
			name:  "unknown template",
			input: createInput("GM-42", nil),
			code:  errors.ErrCodeTemplateNotFound,
		},
		{
			name: "timeframe above schema maximum",
			input: createInput("scenario-simulator", map[string]interface{}{
				"scenario": map[string]interface{}{"budget": 1000.0, "timeframe": 48.0},
			}),
			code: errors.ErrCodePreviewValidationFailed,
		},
		{
			name: "unknown region",
			input: createInput("compliance-radar", map[string]interface{}{
				"compliance": map[string]interface{}{"region": "Antarctica", "industry": "Finance"},
			}),
			code: errors.ErrCodePreviewValidationFailed,
		},
		{
			name: "unknown kpi",
			input: createInput("benchmark-grader", map[string]interface{}{
				"benchmark": map[string]interface{}{"kpis": map[string]interface{}{"headcount": 10.0}},
			}),
			code: errors.ErrCodePreviewValidationFailed,
		},
		{
			name: "resources must be text",
			input: createInput("cost-optimizer", map[string]interface{}{
				"cost": map[string]interface{}{"resources": 12.0},
			}),
			code: errors.ErrCodePreviewValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createTestHandler(t).Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHandler_SchemaCache(t *testing.T) {
	h := createTestHandler(t)

	first, err := h.schemaFor(magnet.CostOptimizer)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := h.schemaFor(magnet.CostOptimizer)
	require.NoError(t, err)
	assert.Same(t, first, second)

	none, err := h.schemaFor(magnet.DataVisualizer)
	require.NoError(t, err)
	assert.Nil(t, none)
}
