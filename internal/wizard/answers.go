// Package wizard implements the five-step lead questionnaire: per-step
// validation, template selection on entering the contact step, the preview
// widget state and the final submission payload.
package wizard

import (
	"strings"

	"magnet-wizard/internal/magnet"
)

// Field names as used in validation messages and API payloads.
const (
	FieldTrigger = "trigger"
	FieldJob     = "job"
	FieldPain    = "pain"
	FieldDesire  = "desire"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldConsent = "consentGiven"
)

// Answers is everything the visitor has entered so far.
type Answers struct {
	Trigger      string `json:"trigger"`
	Job          string `json:"job"`
	Pain         string `json:"pain"`
	Desire       string `json:"desire"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ConsentGiven bool   `json:"consentGiven"`
}

// Input projects the free-text answers for the selector and widgets.
func (a Answers) Input() magnet.Input {
	return magnet.Input{
		Trigger: a.Trigger,
		Job:     a.Job,
		Pain:    a.Pain,
		Desire:  a.Desire,
	}
}

// AnswerPatch carries a partial update; nil fields are left untouched.
// GDPRConsent is accepted as an alias of ConsentGiven.
type AnswerPatch struct {
	Trigger      *string `json:"trigger,omitempty"`
	Job          *string `json:"job,omitempty"`
	Pain         *string `json:"pain,omitempty"`
	Desire       *string `json:"desire,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	ConsentGiven *bool   `json:"consentGiven,omitempty"`
	GDPRConsent  *bool   `json:"gdprConsent,omitempty"`
}

// apply writes the patch into a and returns the names of the changed fields.
func (p AnswerPatch) apply(a *Answers) []string {
	var changed []string
	setString := func(dst *string, src *string, name string) {
		if src != nil {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setString(&a.Trigger, p.Trigger, FieldTrigger)
	setString(&a.Job, p.Job, FieldJob)
	setString(&a.Pain, p.Pain, FieldPain)
	setString(&a.Desire, p.Desire, FieldDesire)
	setString(&a.Email, p.Email, FieldEmail)
	setString(&a.Phone, p.Phone, FieldPhone)

	consent := p.ConsentGiven
	if consent == nil {
		consent = p.GDPRConsent
	}
	if consent != nil {
		a.ConsentGiven = *consent
		changed = append(changed, FieldConsent)
	}
	return changed
}

// normalized trims the values that are stored for follow-up processing.
func (a Answers) normalized() Answers {
	out := a
	out.Trigger = strings.TrimSpace(a.Trigger)
	out.Job = strings.TrimSpace(a.Job)
	out.Pain = strings.TrimSpace(a.Pain)
	out.Desire = strings.TrimSpace(a.Desire)
	out.Email = strings.TrimSpace(a.Email)
	out.Phone = strings.TrimSpace(a.Phone)
	return out
}
