package wizard

import (
	"magnet-wizard/internal/common/validation"
)

const minAnswerLength = 2

var answerSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		FieldTrigger: {
			Type: "string", MinLength: validation.IntPtr(minAnswerLength), Trim: true,
			Message: "Please tell us what triggered your search",
		},
		FieldJob: {
			Type: "string", MinLength: validation.IntPtr(minAnswerLength), Trim: true,
			Message: "Please describe the job you're trying to do",
		},
		FieldPain: {
			Type: "string", MinLength: validation.IntPtr(minAnswerLength), Trim: true,
			Message: "Please describe your main pain point",
		},
		FieldDesire: {
			Type: "string", MinLength: validation.IntPtr(minAnswerLength), Trim: true,
			Message: "Please tell us your desired outcome",
		},
		FieldEmail: {
			Type: "string", Format: "email", Trim: true,
			Message: "Please enter a valid email address",
		},
		FieldPhone: {Type: "string"},
		FieldConsent: {
			Type: "boolean", Const: true,
			Message: "You must agree to the terms and privacy policy",
		},
	},
	Required: []string{FieldTrigger, FieldJob, FieldPain, FieldDesire, FieldEmail, FieldConsent},
}

var stepFields = map[int][]string{
	1: {FieldTrigger},
	2: {FieldJob},
	3: {FieldPain},
	4: {FieldDesire},
	5: {FieldEmail, FieldConsent},
}

// StepFields lists the fields a step must validate before moving on.
func StepFields(step int) []string {
	return stepFields[step]
}

func answerValues(a Answers) map[string]interface{} {
	return map[string]interface{}{
		FieldTrigger: a.Trigger,
		FieldJob:     a.Job,
		FieldPain:    a.Pain,
		FieldDesire:  a.Desire,
		FieldEmail:   a.Email,
		FieldPhone:   a.Phone,
		FieldConsent: a.ConsentGiven,
	}
}

// Validate checks the whole answer set. It returns nil when valid, otherwise
// one message per failing field.
func Validate(a Answers) map[string]string {
	res := validation.ValidateInput(answerValues(a), answerSchema)
	if res.Valid {
		return nil
	}
	return res.FieldMessages()
}

// ValidateFields checks only the named fields.
func ValidateFields(a Answers, fields ...string) map[string]string {
	all := Validate(a)
	if all == nil {
		return nil
	}
	out := make(map[string]string)
	for _, f := range fields {
		if msg, ok := all[f]; ok {
			out[f] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
