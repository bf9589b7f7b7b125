package wizard

// StepPrompt is the copy shown for one free-text step.
type StepPrompt struct {
	Step        int    `json:"step"`
	FieldName   string `json:"fieldName"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
}

// ContactPrompt is the copy shown on the final step.
type ContactPrompt struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	EmailLabel   string `json:"emailLabel"`
	EmailHint    string `json:"emailPlaceholder"`
	PhoneLabel   string `json:"phoneLabel"`
	PhoneHint    string `json:"phonePlaceholder"`
	ConsentLabel string `json:"consentLabel"`
	SubmitLabel  string `json:"submitLabel"`
}

var prompts = []StepPrompt{
	{
		Step:        1,
		FieldName:   FieldTrigger,
		Title:       "What triggered your search today?",
		Description: "Tell us what specific event or situation prompted you to look for a solution.",
		Placeholder: "For example: Recent budget cuts, new compliance requirements, competitive pressure...",
	},
	{
		Step:        2,
		FieldName:   FieldJob,
		Title:       "What job are you trying to get done?",
		Description: "Describe the specific task or objective you're working to accomplish.",
		Placeholder: "For example: Optimize our resource allocation, improve team productivity, reduce compliance risk...",
	},
	{
		Step:        3,
		FieldName:   FieldPain,
		Title:       "What's your biggest pain point?",
		Description: "Tell us about your main frustration or challenge in this area.",
		Placeholder: "For example: Manual processes taking too much time, lack of visibility into performance, high error rates...",
	},
	{
		Step:        4,
		FieldName:   FieldDesire,
		Title:       "What's your desired outcome?",
		Description: "Describe what success would look like after solving this challenge.",
		Placeholder: "For example: Reduce costs by 20%, complete compliance audits in half the time, beat competitors on key metrics...",
	},
}

var contactPrompt = ContactPrompt{
	Title:        "Get Your Full Personalized Demo",
	Description:  "Enter your contact details to receive a complete version of your personalized demo.",
	EmailLabel:   "Email address",
	EmailHint:    "your.email@company.com",
	PhoneLabel:   "Phone number (optional)",
	PhoneHint:    "(123) 456-7890",
	ConsentLabel: "I agree to the Terms of Service and Privacy Policy",
	SubmitLabel:  "Submit",
}

// PromptFor returns the free-text prompt for steps 1-4.
func PromptFor(step int) (StepPrompt, bool) {
	if step < 1 || step > len(prompts) {
		return StepPrompt{}, false
	}
	return prompts[step-1], true
}

// Contact returns the final step's copy.
func Contact() ContactPrompt {
	return contactPrompt
}
