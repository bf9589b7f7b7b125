package createleadrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/common/validation"
	"magnet-wizard/internal/magnet"
)

const (
	TaskType = "create-lead-record"

	statusNew = "new"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing string
	err := h.db.QueryRowContext(ctx,
		`SELECT id FROM magnet_leads WHERE email = $1 AND template_id = $2`,
		email, input.TemplateID,
	).Scan(&existing)
	switch {
	case err == nil:
		return nil, errors.NewDuplicateLeadError(existing)
	case !stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("duplicate check failed: %w", err))
	}

	submittedAt := time.Now().UTC()
	if input.SubmittedAt != "" {
		if t, err := time.Parse(time.RFC3339, input.SubmittedAt); err == nil {
			submittedAt = t.UTC()
		}
	}

	leadID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO magnet_leads (
			id, session_id, email, phone, trigger_text, job_text, pain_text, desire_text,
			template_id, template_code, consent_given, status, submitted_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		leadID,
		input.SessionID,
		email,
		nullIfEmpty(input.Phone),
		input.Trigger,
		input.Job,
		input.Pain,
		input.Desire,
		input.TemplateID,
		input.TemplateCode,
		input.ConsentGiven,
		statusNew,
		submittedAt,
		createdAt,
	)
	if err != nil {
		return nil, errors.NewLeadInsertFailedError(err)
	}

	h.logger.Info("lead record created", map[string]interface{}{
		"leadId":     leadID,
		"sessionId":  input.SessionID,
		"templateId": input.TemplateID,
	})

	return &Output{
		LeadID:     leadID,
		LeadStatus: statusNew,
		CreatedAt:  createdAt,
	}, nil
}

func validateInput(input *Input) error {
	var problems []string
	if !validation.ValidateEmail(strings.TrimSpace(input.Email)) {
		problems = append(problems, "email is invalid")
	}
	if !input.ConsentGiven {
		problems = append(problems, "consent was not given")
	}
	if id, ok := magnet.ParseTemplateID(input.TemplateID); !ok || string(id) != input.TemplateID {
		problems = append(problems, fmt.Sprintf("unknown templateId %q", input.TemplateID))
	}
	if input.SessionID == "" {
		problems = append(problems, "sessionId is required")
	}
	if len(problems) > 0 {
		return errors.NewLeadValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
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
