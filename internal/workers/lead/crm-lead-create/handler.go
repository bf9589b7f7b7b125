package crmleadcreate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/common/validation"
	"magnet-wizard/internal/common/zoho"
)

const (
	TaskType = "crm-lead-create"

	providerZoho = "zoho"
)

// CRM is the part of the Zoho client this worker needs.
type CRM interface {
	SearchContacts(ctx context.Context, email string) ([]zoho.Contact, error)
	CreateContact(ctx context.Context, contact *zoho.Contact) (string, error)
	UpdateContact(ctx context.Context, contactID string, contact *zoho.Contact) error
}

type Handler struct {
	config       *Config
	crm          CRM
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, crm CRM, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		crm:          crm,
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

// Execute creates the contact, or tags an existing contact with the new
// template when the email is already known to the CRM.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !validation.ValidateEmail(email) {
		return nil, errors.NewLeadValidationFailedError(fmt.Sprintf("invalid email: %q", input.Email))
	}

	contact := &zoho.Contact{
		Email:       email,
		LastName:    lastNameFromEmail(email),
		Phone:       input.Phone,
		Source:      h.leadSource(input.TemplateCode),
		Description: describe(input),
	}

	existing, err := h.crm.SearchContacts(ctx, email)
	if err != nil {
		// Search failures fall through to create; Zoho rejects true duplicates.
		h.logger.Warn("contact search failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
	} else if len(existing) > 0 {
		id := existing[0].ID
		update := &zoho.Contact{Email: email, Source: contact.Source, Description: contact.Description}
		if err := h.crm.UpdateContact(ctx, id, update); err != nil {
			return nil, errors.NewCRMAPIError("update", err)
		}
		h.logger.Info("crm contact updated", map[string]interface{}{
			"contactId": id,
			"leadId":    input.LeadID,
		})
		return &Output{ContactID: id, Created: false, CRMProvider: providerZoho}, nil
	}

	id, err := h.crm.CreateContact(ctx, contact)
	if err != nil {
		return nil, errors.NewCRMAPIError("create", err)
	}

	h.logger.Info("crm contact created", map[string]interface{}{
		"contactId": id,
		"leadId":    input.LeadID,
	})
	return &Output{ContactID: id, Created: true, CRMProvider: providerZoho}, nil
}

func (h *Handler) leadSource(templateCode string) string {
	if templateCode == "" {
		return h.config.LeadSource
	}
	return h.config.LeadSource + ":" + templateCode
}

// Zoho requires Last_Name; the wizard never asks for a name.
func lastNameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	return local
}

func describe(input *Input) string {
	var b strings.Builder
	if input.TemplateName != "" {
		fmt.Fprintf(&b, "Requested demo: %s (%s)\n", input.TemplateName, input.TemplateCode)
	}
	if input.Trigger != "" {
		fmt.Fprintf(&b, "Trigger: %s\n", strings.TrimSpace(input.Trigger))
	}
	if input.Desire != "" {
		fmt.Fprintf(&b, "Desired outcome: %s\n", strings.TrimSpace(input.Desire))
	}
	return strings.TrimRight(b.String(), "\n")
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
