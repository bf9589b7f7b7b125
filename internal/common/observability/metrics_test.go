package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	"magnet-wizard/internal/common/logger"
)

func TestObservability_WithoutTracing(t *testing.T) {
	obs := New(Options{ServiceName: "wizard-test"}, logger.NewTestLogger(t))
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "wizard.next", attribute.Int("step", 1))
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "index-lead", "completed")
		obs.RecordJobDuration(ctx, "index-lead", 15*time.Millisecond, "completed")
		obs.RecordWizardOperation(ctx, "next", "ok")
	})
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		_, span := obs.StartSpan(context.Background(), "noop")
		span.End()
		obs.RecordWizardOperation(context.Background(), "submit", "ok")
		obs.Shutdown()
	})
}
