package buildpreview

import (
	"context"
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/magnet"
)

const TaskType = "build-preview"

//go:embed schemas/*.json
var schemaFS embed.FS

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler

	mu      sync.RWMutex
	schemas map[magnet.TemplateID]*gojsonschema.Schema
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
		schemas:      make(map[magnet.TemplateID]*gojsonschema.Schema),
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

// Execute validates the parameters against the template's JSON schema, then
// renders the widget. Templates without a widget render the placeholder.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id, ok := magnet.ParseTemplateID(input.TemplateID)
	if !ok {
		return nil, errors.NewTemplateNotFoundError(input.TemplateID)
	}

	params := magnet.DefaultParams(id)
	if len(input.Params) > 0 {
		if err := h.validateParams(id, input.Params); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(input.Params)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		var update magnet.Params
		if err := json.Unmarshal(raw, &update); err != nil {
			return nil, errors.NewPreviewValidationFailedError(err.Error())
		}
		params = params.Merge(update)
		params.Analyzed = update.Analyzed
	}

	preview, err := magnet.Render(id, magnet.Input{
		Trigger: input.Trigger,
		Job:     input.Job,
		Pain:    input.Pain,
		Desire:  input.Desire,
	}, params)
	if err != nil {
		if stderrors.Is(err, magnet.ErrInvalidParams) {
			return nil, errors.NewInvalidPreviewParamsError(err.Error())
		}
		return nil, errors.NewInternalError(err)
	}

	h.logger.Debug("preview built", map[string]interface{}{
		"templateId": string(id),
		"analyzed":   preview.Analyzed,
	})
	return &Output{Preview: preview}, nil
}

func (h *Handler) validateParams(id magnet.TemplateID, params map[string]interface{}) error {
	schema, err := h.schemaFor(id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if schema == nil {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return errors.NewPreviewValidationFailedError(fmt.Sprintf("validation error: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return errors.NewPreviewValidationFailedError(strings.Join(msgs, "; "))
	}
	return nil
}

// schemaFor compiles and caches the schema of id. Templates without a schema
// file yield nil.
func (h *Handler) schemaFor(id magnet.TemplateID) (*gojsonschema.Schema, error) {
	h.mu.RLock()
	schema, ok := h.schemas[id]
	h.mu.RUnlock()
	if ok {
		return schema, nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + string(id) + ".json")
	if err != nil {
		h.mu.Lock()
		h.schemas[id] = nil
		h.mu.Unlock()
		return nil, nil
	}

	schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", id, err)
	}

	h.mu.Lock()
	h.schemas[id] = schema
	h.mu.Unlock()
	return schema, nil
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
