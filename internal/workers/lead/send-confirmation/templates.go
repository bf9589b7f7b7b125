package sendconfirmation

import (
	"strings"
)

const (
	emailSubject = "Your personalized {{templateName}} demo"

	emailBody = `Thank you for completing our questionnaire.

Based on your answers we prepared the {{templateName}} ({{templateCode}}).
You told us your search started with: {{trigger}}
and that success would look like: {{desire}}

We'll be in touch shortly with the full version of your personalized demo.`

	smsBody = "Thanks for requesting the {{templateName}} demo. Check your inbox for next steps."
)

// renderTemplate replaces {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]string) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

// e164 converts a free-form phone number to the format SNS requires.
// Ten-digit numbers are assumed to be North American.
func e164(phone string) (string, bool) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", false
	}
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(phone, "+") && len(d) >= 8 && len(d) <= 15:
		return "+" + d, true
	case len(d) == 10:
		return "+1" + d, true
	case len(d) == 11 && d[0] == '1':
		return "+" + d, true
	}
	return "", false
}
