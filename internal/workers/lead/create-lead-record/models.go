package createleadrecord

// Input is the submission as started into the lead process.
type Input struct {
	SessionID    string `json:"sessionId"`
	Trigger      string `json:"trigger"`
	Job          string `json:"job"`
	Pain         string `json:"pain"`
	Desire       string `json:"desire"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ConsentGiven bool   `json:"consentGiven"`
	TemplateID   string `json:"templateId"`
	TemplateCode string `json:"templateCode"`
	SubmittedAt  string `json:"submittedAt"` // RFC 3339
}

type Output struct {
	LeadID     string `json:"leadId"`
	LeadStatus string `json:"leadStatus"`
	CreatedAt  string `json:"createdAt"` // RFC 3339
}
