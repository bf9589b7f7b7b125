package buildpreview

import (
	"magnet-wizard/internal/magnet"
)

// Input names the template, the answers it personalizes from, and the raw
// widget parameters as they arrive in process variables.
type Input struct {
	TemplateID string                 `json:"templateId"`
	Trigger    string                 `json:"trigger"`
	Job        string                 `json:"job"`
	Pain       string                 `json:"pain"`
	Desire     string                 `json:"desire"`
	Params     map[string]interface{} `json:"params,omitempty"`
}

type Output struct {
	Preview *magnet.Preview `json:"preview"`
}
