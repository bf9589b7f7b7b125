package sendconfirmation

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
	NotificationID string `json:"notificationId"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // RFC 3339
}
