// internal/analysis/solutions.go
package analysis

import "customer-service-workers/internal/models"

// solutionTemplate is the per-category action plan. The general category has
// no template of its own and falls back to product.
type solutionTemplate struct {
	ImmediateActions   []string
	ResolutionSteps    []string
	EscalationCriteria string
}

var solutionTemplates = map[models.IssueCategory]solutionTemplate{
	models.CategoryBilling: {
		ImmediateActions: []string{
			"Review customer billing history",
			"Check payment status and methods",
			"Verify billing address and information",
		},
		ResolutionSteps: []string{
			"Investigate billing discrepancy",
			"Process refund if applicable",
			"Update billing preferences",
		},
		EscalationCriteria: "Amount > $500 or legal implications",
	},
	models.CategoryTechnical: {
		ImmediateActions: []string{
			"Gather system information and error logs",
			"Reproduce the issue if possible",
			"Check system status and known issues",
		},
		ResolutionSteps: []string{
			"Apply standard troubleshooting steps",
			"Escalate to technical team if needed",
			"Provide workaround if available",
		},
		EscalationCriteria: "System-wide impact or security concerns",
	},
	models.CategoryAccount: {
		ImmediateActions: []string{
			"Verify customer identity",
			"Check account status and permissions",
			"Review recent account activity",
		},
		ResolutionSteps: []string{
			"Reset credentials if needed",
			"Update account settings",
			"Provide security recommendations",
		},
		EscalationCriteria: "Suspected security breach",
	},
	models.CategoryProduct: {
		ImmediateActions: []string{
			"Understand specific use case",
			"Check product documentation",
			"Identify feature limitations",
		},
		ResolutionSteps: []string{
			"Provide step-by-step guidance",
			"Share relevant documentation",
			"Suggest alternative approaches",
		},
		EscalationCriteria: "Feature request or product limitation",
	},
}

var baseResolutionTimes = map[models.IssueCategory]string{
	models.CategoryBilling:   "2-4 hours",
	models.CategoryTechnical: "4-8 hours",
	models.CategoryAccount:   "1-2 hours",
	models.CategoryProduct:   "2-6 hours",
	models.CategoryGeneral:   "2-4 hours",
}

var requiredPermissions = map[models.IssueCategory][]string{
	models.CategoryBilling:   {"billing_read", "billing_write", "refund_process"},
	models.CategoryTechnical: {"system_access", "log_access", "escalation_create"},
	models.CategoryAccount:   {"account_read", "account_write", "security_reset"},
	models.CategoryProduct:   {"documentation_access", "feature_info"},
	models.CategoryGeneral:   {"basic_support"},
}

// RecommendSolution builds a recommendation from the category template,
// customized for premium and enterprise tiers. Template tables are shared, so
// action lists are always copied before modification.
func (e *Engine) RecommendSolution(classification models.IssueClassification, tier models.CustomerTier) models.SolutionRecommendation {
	category := classification.PrimaryCategory

	template, ok := solutionTemplates[category]
	if !ok {
		template = solutionTemplates[models.CategoryProduct]
	}

	immediate := append([]string(nil), template.ImmediateActions...)
	resolution := append([]string(nil), template.ResolutionSteps...)

	rec := models.SolutionRecommendation{
		Category:                category,
		Subcategory:             classification.Subcategory,
		ImmediateActions:        immediate,
		ResolutionSteps:         resolution,
		EscalationCriteria:      template.EscalationCriteria,
		EstimatedResolutionTime: e.EstimateResolutionTime(category, tier),
		RequiredPermissions:     append([]string(nil), requiredPermissions[category]...),
	}

	if tier == models.TierPremium || tier == models.TierEnterprise {
		rec.ImmediateActions = append([]string{"Assign dedicated support representative"}, rec.ImmediateActions...)
		rec.AdditionalBenefits = []string{"Priority handling", "Direct escalation path"}
	}

	return rec
}

// EstimateResolutionTime returns the per-category base estimate, annotated for
// premium and enterprise tiers.
func (e *Engine) EstimateResolutionTime(category models.IssueCategory, tier models.CustomerTier) string {
	base, ok := baseResolutionTimes[category]
	if !ok {
		base = "2-4 hours"
	}

	if tier == models.TierPremium || tier == models.TierEnterprise {
		return base + " (Priority handling)"
	}
	return base
}
