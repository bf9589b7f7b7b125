// Package errors provides standardized error handling for the wizard API and
// for BPMN workflow integration of the lead workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Wizard session errors
const (
	ErrCodeSessionNotFound         ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed      ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeInvalidTransition       ErrorCode = "INVALID_TRANSITION"
	ErrCodeWizardValidationFailed  ErrorCode = "WIZARD_VALIDATION_FAILED"
	ErrCodeInvalidPreviewParams    ErrorCode = "INVALID_PREVIEW_PARAMS"
	ErrCodeProcessStartFailed      ErrorCode = "PROCESS_START_FAILED"
	ErrCodeInvalidRequest          ErrorCode = "INVALID_REQUEST"
	ErrCodeTemplateNotFound        ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodePreviewValidationFailed ErrorCode = "PREVIEW_VALIDATION_FAILED"
)

// Lead pipeline errors
const (
	ErrCodeLeadValidationFailed          ErrorCode = "LEAD_VALIDATION_FAILED"
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeLeadInsertFailed              ErrorCode = "LEAD_INSERT_FAILED"
	ErrCodeDuplicateLead                 ErrorCode = "DUPLICATE_LEAD"
	ErrCodeCRMAPIError                   ErrorCode = "CRM_API_ERROR"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeLeadIndexFailed               ErrorCode = "LEAD_INDEX_FAILED"
	ErrCodeTimeout                       ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal                      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a *StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewSessionNotFoundError creates a non-retryable lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Wizard session not found or expired",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

// NewSessionStoreFailedError creates a retryable storage error.
func NewSessionStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store unavailable",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true, err)
}

// NewInvalidTransitionError reports a step move that the wizard does not allow.
func NewInvalidTransitionError(details string) *StandardError {
	return newError(ErrCodeInvalidTransition, "Step transition not allowed", details, false, nil)
}

// NewWizardValidationFailedError carries the field messages as metadata.
func NewWizardValidationFailedError(fieldErrors map[string]string) *StandardError {
	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	e := newError(ErrCodeWizardValidationFailed, "Some answers need attention",
		fmt.Sprintf("fields: %s", strings.Join(fields, ",")), false, nil)
	return e.WithMetadata("fieldErrors", fieldErrors)
}

// NewInvalidPreviewParamsError creates a non-retryable preview input error.
func NewInvalidPreviewParamsError(details string) *StandardError {
	return newError(ErrCodeInvalidPreviewParams, "Invalid preview parameters", details, false, nil)
}

// NewInvalidRequestError creates a non-retryable request decoding error.
func NewInvalidRequestError(err error) *StandardError {
	return newError(ErrCodeInvalidRequest, "Malformed request", err.Error(), false, err)
}

// NewProcessStartFailedError creates a retryable workflow start error.
func NewProcessStartFailedError(processID string, err error) *StandardError {
	return newError(ErrCodeProcessStartFailed, "Could not start lead process",
		fmt.Sprintf("processId: %s, error: %s", processID, err.Error()), true, err)
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return newError(ErrCodeTemplateNotFound, "Template not found in registry",
		fmt.Sprintf("templateId: %s", templateID), false, nil)
}

// NewPreviewValidationFailedError creates a non-retryable schema error.
func NewPreviewValidationFailedError(details string) *StandardError {
	return newError(ErrCodePreviewValidationFailed, "Preview parameters failed schema validation", details, false, nil)
}

// NewLeadValidationFailedError creates a non-retryable lead payload error.
func NewLeadValidationFailedError(details string) *StandardError {
	return newError(ErrCodeLeadValidationFailed, "Lead data validation failed", details, false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewLeadInsertFailedError creates a retryable database insert error.
func NewLeadInsertFailedError(err error) *StandardError {
	return newError(ErrCodeLeadInsertFailed, "Lead insert failed", err.Error(), true, err)
}

// NewDuplicateLeadError creates a non-retryable duplicate error.
func NewDuplicateLeadError(leadID string) *StandardError {
	return newError(ErrCodeDuplicateLead, "Lead already recorded",
		fmt.Sprintf("leadId: %s", leadID), false, nil)
}

// NewCRMAPIError creates a retryable CRM error.
func NewCRMAPIError(op string, err error) *StandardError {
	return newError(ErrCodeCRMAPIError, "CRM API error",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true, err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true, err)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true, err)
}

// NewLeadIndexFailedError creates a retryable indexing error.
func NewLeadIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeLeadIndexFailed, "Lead indexing failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeLeadInsertFailed,
		ErrCodeCRMAPIError,
		ErrCodeNotificationSendFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeLeadIndexFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeProcessStartFailed:
		return 3

	case ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are the internal codes verbatim.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// HTTPStatus maps an error code to the status the wizard API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeSessionNotFound, ErrCodeTemplateNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodeWizardValidationFailed, ErrCodePreviewValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidPreviewParams, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	case ErrCodeProcessStartFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "TRANSITION"):
		return "WIZARD"
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "PREVIEW"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "LEAD_INSERT") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "CRM"):
		return "CRM"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
