// internal/workers/customer-service/generate-response/templates.go
package generateresponse

import "customer-service-workers/internal/models"

// responseTemplate holds the four sections of a customer reply. NextSteps
// carries an {sla_time} placeholder substituted at render time.
type responseTemplate struct {
	Greeting       string
	Acknowledgment string
	Action         string
	NextSteps      string
}

var responseTemplates = map[models.IssueCategory]responseTemplate{
	models.CategoryBilling: {
		Greeting:       "Thank you for contacting us regarding your billing inquiry.",
		Acknowledgment: "I've reviewed your account and understand your concern about the billing issue.",
		Action:         "I'm working to resolve this matter promptly and will ensure any necessary adjustments are made.",
		NextSteps:      "You can expect a resolution within {sla_time}, and I'll keep you updated on our progress.",
	},
	models.CategoryTechnical: {
		Greeting:       "Thank you for reporting this technical issue.",
		Acknowledgment: "I understand how frustrating technical problems can be, and I'm here to help.",
		Action:         "I've initiated our troubleshooting process and am working with our technical team to identify the root cause.",
		NextSteps:      "I'll provide you with a solution or workaround within {sla_time}.",
	},
	models.CategoryAccount: {
		Greeting:       "Thank you for contacting us about your account.",
		Acknowledgment: "I've reviewed your account status and understand your concern.",
		Action:         "I'm taking immediate steps to address your account-related issue.",
		NextSteps:      "Your account issue will be resolved within {sla_time}.",
	},
	models.CategoryProduct: {
		Greeting:       "Thank you for your product inquiry.",
		Acknowledgment: "I understand you need assistance with our product features.",
		Action:         "I'm gathering the relevant information and resources to help you achieve your goals.",
		NextSteps:      "I'll provide you with detailed guidance within {sla_time}.",
	},
}

// templateFor returns the template for a category; categories without a
// template of their own use the product one.
func templateFor(category models.IssueCategory) responseTemplate {
	if tpl, ok := responseTemplates[category]; ok {
		return tpl
	}
	return responseTemplates[models.CategoryProduct]
}
