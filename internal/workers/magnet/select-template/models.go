package selecttemplate

// Input carries the four free-text answers and, optionally, the template the
// wizard session already chose.
type Input struct {
	Trigger    string `json:"trigger"`
	Job        string `json:"job"`
	Pain       string `json:"pain"`
	Desire     string `json:"desire"`
	TemplateID string `json:"templateId,omitempty"`
}

type Output struct {
	SelectedTemplateID string `json:"selectedTemplateId"`
	TemplateCode       string `json:"templateCode"`
	TemplateName       string `json:"templateName"`
	MatchedKeyword     string `json:"matchedKeyword,omitempty"`
	SnapshotMatches    bool   `json:"snapshotMatches"`
}
