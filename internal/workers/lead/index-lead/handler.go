package indexlead

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

const TaskType = "index-lead"

// Indexer stores a document under an id.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config       *Config
	indexer      Indexer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, indexer Indexer, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		indexer:      indexer,
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

// Execute indexes the lead keyed by its lead id, so replays overwrite.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, errors.NewLeadValidationFailedError("leadId is required")
	}

	doc := buildDocument(input)
	if err := h.indexer.IndexDocument(ctx, h.config.Index, input.LeadID, doc); err != nil {
		if errors.HasCode(err, errors.ErrCodeElasticsearchConnectionFailed) {
			return nil, err
		}
		return nil, errors.NewLeadIndexFailedError(h.config.Index, err)
	}

	h.logger.Info("lead indexed", map[string]interface{}{
		"leadId": input.LeadID,
		"index":  h.config.Index,
	})
	return &Output{Indexed: true, DocumentID: input.LeadID, Index: h.config.Index}, nil
}

// The full address stays in Postgres; search only sees the domain.
func buildDocument(input *Input) *LeadDocument {
	domain := ""
	if i := strings.LastIndexByte(input.Email, '@'); i >= 0 {
		domain = strings.ToLower(strings.TrimSpace(input.Email[i+1:]))
	}

	answers := magnet.Input{
		Trigger: input.Trigger,
		Job:     input.Job,
		Pain:    input.Pain,
		Desire:  input.Desire,
	}

	return &LeadDocument{
		LeadID:         input.LeadID,
		SessionID:      input.SessionID,
		EmailDomain:    domain,
		Trigger:        input.Trigger,
		Job:            input.Job,
		Pain:           input.Pain,
		Desire:         input.Desire,
		TemplateID:     input.TemplateID,
		TemplateCode:   input.TemplateCode,
		TemplateName:   input.TemplateName,
		MatchedKeyword: magnet.MatchedKeyword(answers),
		CRMContactID:   input.ContactID,
		SubmittedAt:    input.SubmittedAt,
		IndexedAt:      time.Now().UTC().Format(time.RFC3339),
	}
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
