package crmleadcreate

type Input struct {
	LeadID       string `json:"leadId"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Trigger      string `json:"trigger"`
	Desire       string `json:"desire"`
	TemplateCode string `json:"templateCode"`
	TemplateName string `json:"templateName"`
}

type Output struct {
	ContactID   string `json:"contactId"`
	Created     bool   `json:"crmContactCreated"`
	CRMProvider string `json:"crmProvider"`
}
