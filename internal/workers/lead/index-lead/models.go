package indexlead

type Input struct {
	LeadID       string `json:"leadId"`
	SessionID    string `json:"sessionId"`
	Email        string `json:"email"`
	Trigger      string `json:"trigger"`
	Job          string `json:"job"`
	Pain         string `json:"pain"`
	Desire       string `json:"desire"`
	TemplateID   string `json:"templateId"`
	TemplateCode string `json:"templateCode"`
	TemplateName string `json:"templateName"`
	ContactID    string `json:"contactId,omitempty"`
	SubmittedAt  string `json:"submittedAt"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	DocumentID string `json:"documentId"`
	Index      string `json:"index"`
}

// LeadDocument is the search document stored per lead.
type LeadDocument struct {
	LeadID         string `json:"leadId"`
	SessionID      string `json:"sessionId"`
	EmailDomain    string `json:"emailDomain"`
	Trigger        string `json:"trigger"`
	Job            string `json:"job"`
	Pain           string `json:"pain"`
	Desire         string `json:"desire"`
	TemplateID     string `json:"templateId"`
	TemplateCode   string `json:"templateCode"`
	TemplateName   string `json:"templateName"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
	CRMContactID   string `json:"crmContactId,omitempty"`
	SubmittedAt    string `json:"submittedAt"`
	IndexedAt      string `json:"indexedAt"`
}
