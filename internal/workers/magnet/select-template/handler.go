package selecttemplate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/magnet"
)

const TaskType = "select-template"

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeInvalidRequest)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidRequestError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute re-runs the keyword selector on the answers. A snapshot id from the
// session is compared but never overrides the server-side result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	in := magnet.Input{
		Trigger: input.Trigger,
		Job:     input.Job,
		Pain:    input.Pain,
		Desire:  input.Desire,
	}
	if strings.TrimSpace(in.Text()) == "" {
		return nil, errors.NewLeadValidationFailedError("all four answers are empty")
	}

	selected := magnet.Select(in)
	out := &Output{
		SelectedTemplateID: string(selected),
		TemplateCode:       selected.Code(),
		TemplateName:       selected.Name(),
		MatchedKeyword:     magnet.MatchedKeyword(in),
		SnapshotMatches:    true,
	}

	if input.TemplateID != "" {
		snapshot, ok := magnet.ParseTemplateID(input.TemplateID)
		out.SnapshotMatches = ok && snapshot == selected
		if !out.SnapshotMatches {
			h.logger.Warn("session template differs from server selection", map[string]interface{}{
				"snapshot": input.TemplateID,
				"selected": string(selected),
			})
		}
	}

	return out, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}
