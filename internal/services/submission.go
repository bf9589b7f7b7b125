// Package services holds the wizard use cases shared by the HTTP API: session
// operations and the hand-off of completed submissions.
package services

import (
	"context"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/wizard"
)

const (
	ThankYouTitle       = "Thank you for your submission!"
	ThankYouDescription = "We'll be in touch soon with your full personalized demo."
)

// ProcessStarter starts a workflow instance for a submission.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Acknowledgement is the confirmation shown once a submission is accepted.
type Acknowledgement struct {
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Submission         *wizard.Submission `json:"submission"`
	ProcessInstanceKey int64              `json:"processInstanceKey,omitempty"`
}

// LeadSubmissionService receives completed wizard submissions.
type LeadSubmissionService struct {
	starter   ProcessStarter
	processID string
	logger    logger.Logger
}

// NewLeadSubmissionService creates the service. With a nil starter the
// submission is only logged.
func NewLeadSubmissionService(starter ProcessStarter, processID string, log logger.Logger) *LeadSubmissionService {
	return &LeadSubmissionService{
		starter:   starter,
		processID: processID,
		logger:    log.WithFields(map[string]interface{}{"component": "lead-submission"}),
	}
}

// Submit logs the submission and, when configured, starts the lead process.
func (s *LeadSubmissionService) Submit(ctx context.Context, sub *wizard.Submission) (*Acknowledgement, error) {
	s.logger.Info("Form submitted", map[string]interface{}{
		"sessionId":    sub.SessionID,
		"templateId":   string(sub.TemplateID),
		"templateCode": sub.TemplateCode,
		"email":        sub.Email,
		"hasPhone":     sub.Phone != "",
	})

	ack := &Acknowledgement{
		Title:       ThankYouTitle,
		Description: ThankYouDescription,
		Submission:  sub,
	}

	if s.starter == nil {
		metrics.WizardSubmissions.WithLabelValues("accepted").Inc()
		return ack, nil
	}

	key, err := s.starter.StartProcess(ctx, s.processID, processVariables(sub))
	if err != nil {
		metrics.WizardSubmissions.WithLabelValues("failed").Inc()
		s.logger.Error("lead process start failed", map[string]interface{}{
			"sessionId": sub.SessionID,
			"processId": s.processID,
			"error":     err,
		})
		if stdErr, ok := errors.As(err); ok {
			return nil, stdErr
		}
		return nil, errors.NewProcessStartFailedError(s.processID, err)
	}

	metrics.WizardSubmissions.WithLabelValues("accepted").Inc()
	ack.ProcessInstanceKey = key
	s.logger.Info("lead process started", map[string]interface{}{
		"sessionId":          sub.SessionID,
		"processInstanceKey": key,
	})
	return ack, nil
}

// processVariables flattens a submission into the variables the lead workers
// read.
func processVariables(sub *wizard.Submission) map[string]interface{} {
	return map[string]interface{}{
		"sessionId":    sub.SessionID,
		"trigger":      sub.Trigger,
		"job":          sub.Job,
		"pain":         sub.Pain,
		"desire":       sub.Desire,
		"email":        sub.Email,
		"phone":        sub.Phone,
		"consentGiven": sub.ConsentGiven,
		"templateId":   string(sub.TemplateID),
		"templateCode": sub.TemplateCode,
		"templateName": sub.TemplateName,
		"submittedAt":  sub.SubmittedAt,
	}
}
