package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"magnet-wizard/internal/magnet"
)

// TotalSteps is the number of wizard steps: four questions plus contact.
const TotalSteps = 5

var (
	ErrInvalidTransition  = errors.New("INVALID_TRANSITION")
	ErrPreviewUnavailable = errors.New("PREVIEW_UNAVAILABLE")
	ErrAlreadySubmitted   = errors.New("ALREADY_SUBMITTED")
)

// ValidationError reports the failing fields of a Next or Submit attempt.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed for %s", strings.Join(names, ", "))
}

// Session is the full state of one visitor's pass through the wizard. It is
// plain data so it can be persisted between requests.
type Session struct {
	ID          string            `json:"id"`
	Step        int               `json:"step"`
	Answers     Answers           `json:"answers"`
	Touched     map[string]bool   `json:"touched,omitempty"`
	TemplateID  magnet.TemplateID `json:"templateId,omitempty"`
	ShowPreview bool              `json:"showPreview"`
	Params      magnet.Params     `json:"params"`
	Submitted   bool              `json:"submitted"`
	SubmittedAt *time.Time        `json:"submittedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Submission is the payload handed to the host once the wizard completes.
// Answers are flattened next to the template fields.
type Submission struct {
	Answers
	SessionID    string            `json:"sessionId"`
	TemplateID   magnet.TemplateID `json:"templateId"`
	TemplateCode string            `json:"templateCode"`
	TemplateName string            `json:"templateName"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// NewSession returns a session at step 1 with empty answers.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      1,
		Touched:   map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Progress is the completion percentage shown in the progress bar.
func (s *Session) Progress() float64 {
	return float64(s.Step) / TotalSteps * 100
}

// UpdateAnswers applies a partial update and returns the live errors for
// every field touched so far.
func (s *Session) UpdateAnswers(patch AnswerPatch, now time.Time) (map[string]string, error) {
	if s.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if s.Touched == nil {
		s.Touched = map[string]bool{}
	}
	for _, f := range patch.apply(&s.Answers) {
		s.Touched[f] = true
	}
	s.UpdatedAt = now
	return s.Errors(), nil
}

// Errors returns validation messages for touched fields only.
func (s *Session) Errors() map[string]string {
	all := Validate(s.Answers)
	out := make(map[string]string)
	for f, msg := range all {
		if s.Touched[f] {
			out[f] = msg
		}
	}
	return out
}

// CanAdvance reports whether the current step's fields validate.
func (s *Session) CanAdvance() bool {
	if s.Submitted {
		return false
	}
	return ValidateFields(s.Answers, StepFields(s.Step)...) == nil
}

// Next validates the current step and advances. Entering the contact step
// selects the template from the four answers.
func (s *Session) Next(now time.Time) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if s.Step >= TotalSteps {
		return fmt.Errorf("%w: already on the final step", ErrInvalidTransition)
	}

	fields := StepFields(s.Step)
	s.touch(fields...)
	if errs := ValidateFields(s.Answers, fields...); errs != nil {
		return &ValidationError{Fields: errs}
	}

	if s.Step == TotalSteps-1 {
		selected := magnet.Select(s.Answers.Input())
		if selected != s.TemplateID {
			s.Params = magnet.DefaultParams(selected)
		}
		s.TemplateID = selected
		s.ShowPreview = true
	}

	s.Step++
	s.UpdatedAt = now
	return nil
}

// Back moves one step back, never below step 1. Leaving the contact step
// hides the preview; the selected template is kept until the next selection.
func (s *Session) Back(now time.Time) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if s.Step == TotalSteps {
		s.ShowPreview = false
	}
	if s.Step > 1 {
		s.Step--
	}
	s.UpdatedAt = now
	return nil
}

func (s *Session) previewActive() bool {
	return s.Step == TotalSteps && s.ShowPreview && s.TemplateID != ""
}

// Preview renders the current preview widget.
func (s *Session) Preview() (*magnet.Preview, error) {
	if !s.previewActive() {
		return nil, ErrPreviewUnavailable
	}
	return magnet.Render(s.TemplateID, s.Answers.Input(), s.Params)
}

// UpdatePreviewParams merges widget inputs. Invalid values are rejected and
// leave the previous parameters in place.
func (s *Session) UpdatePreviewParams(update magnet.Params, now time.Time) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !s.previewActive() {
		return ErrPreviewUnavailable
	}
	merged := s.Params.Merge(update)
	if err := merged.Validate(s.TemplateID); err != nil {
		return err
	}
	s.Params = merged
	s.UpdatedAt = now
	return nil
}

// Analyze runs the widget's action button. seed feeds the cost optimizer's
// per-line savings and is ignored by the other widgets.
func (s *Session) Analyze(seed int64, now time.Time) error {
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	if !s.previewActive() {
		return ErrPreviewUnavailable
	}
	if err := s.Params.Validate(s.TemplateID); err != nil {
		return err
	}
	if s.TemplateID == magnet.CostOptimizer {
		if s.Params.Cost == nil {
			def := magnet.DefaultParams(magnet.CostOptimizer)
			s.Params.Cost = def.Cost
		}
		if seed == 0 {
			seed = 1
		}
		s.Params.Cost.Seed = seed
	}
	s.Params.Analyzed = true
	s.UpdatedAt = now
	return nil
}

// Submit validates every field and produces the submission payload. It is
// only allowed on the contact step.
func (s *Session) Submit(now time.Time) (*Submission, error) {
	if s.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if s.Step != TotalSteps {
		return nil, fmt.Errorf("%w: submit is only allowed on step %d", ErrInvalidTransition, TotalSteps)
	}

	s.touch(FieldTrigger, FieldJob, FieldPain, FieldDesire, FieldEmail, FieldConsent)
	if errs := Validate(s.Answers); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	templateID := s.TemplateID
	if templateID == "" {
		templateID = magnet.DefaultTemplate
	}

	s.Submitted = true
	s.SubmittedAt = &now
	s.UpdatedAt = now

	return &Submission{
		Answers:      s.Answers.normalized(),
		SessionID:    s.ID,
		TemplateID:   templateID,
		TemplateCode: templateID.Code(),
		TemplateName: templateID.Name(),
		SubmittedAt:  now,
	}, nil
}

// Reopen undoes a Submit whose hand-off failed. Answers and touched fields
// are kept.
func (s *Session) Reopen(now time.Time) {
	s.Submitted = false
	s.SubmittedAt = nil
	s.UpdatedAt = now
}

// Reset returns the session to a fresh step 1, keeping its id.
func (s *Session) Reset(now time.Time) {
	created := s.CreatedAt
	*s = *NewSession(s.ID, now)
	s.CreatedAt = created
}

func (s *Session) touch(fields ...string) {
	if s.Touched == nil {
		s.Touched = map[string]bool{}
	}
	for _, f := range fields {
		s.Touched[f] = true
	}
}
