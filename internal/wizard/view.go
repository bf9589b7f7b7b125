package wizard

import (
	"magnet-wizard/internal/magnet"
)

// View is the renderable snapshot of a session returned to clients.
type View struct {
	SessionID  string            `json:"sessionId"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"totalSteps"`
	Progress   float64           `json:"progress"`
	Prompt     *StepPrompt       `json:"prompt,omitempty"`
	Contact    *ContactPrompt    `json:"contact,omitempty"`
	Answers    Answers           `json:"answers"`
	Errors     map[string]string `json:"errors,omitempty"`
	CanAdvance bool              `json:"canAdvance"`
	CanGoBack  bool              `json:"canGoBack"`
	CanSubmit  bool              `json:"canSubmit"`
	Preview    *magnet.Preview   `json:"preview,omitempty"`
	Submitted  bool              `json:"submitted"`
}

// NewView builds the client snapshot. A preview that fails to render is
// omitted rather than failing the whole view.
func NewView(s *Session) View {
	v := View{
		SessionID:  s.ID,
		Step:       s.Step,
		TotalSteps: TotalSteps,
		Progress:   s.Progress(),
		Answers:    s.Answers,
		Errors:     s.Errors(),
		CanGoBack:  s.Step > 1 && !s.Submitted,
		Submitted:  s.Submitted,
	}

	if s.Step < TotalSteps {
		if p, ok := PromptFor(s.Step); ok {
			v.Prompt = &p
		}
		v.CanAdvance = s.CanAdvance()
	} else {
		c := Contact()
		v.Contact = &c
		v.CanSubmit = !s.Submitted && Validate(s.Answers) == nil
		if preview, err := s.Preview(); err == nil {
			v.Preview = preview
		}
	}
	return v
}
