// internal/models/customer.go
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CustomerProfile holds customer identity data. It is immutable once fetched
// for a given workflow run.
type CustomerProfile struct {
	CustomerID  string                 `json:"customerId"`
	Name        string                 `json:"name"`
	Tier        CustomerTier           `json:"tier"`
	Status      string                 `json:"status"` // "active", "inactive", "suspended"
	CreatedDate string                 `json:"createdDate"`
	Email       string                 `json:"email,omitempty"`
	Phone       string                 `json:"phone,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

// Customer statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// DefaultProfile returns the fallback profile used when no record exists for
// the customer.
func DefaultProfile(customerID string) CustomerProfile {
	return CustomerProfile{
		CustomerID:  customerID,
		Name:        "Unknown Customer",
		Tier:        TierStandard,
		Status:      StatusActive,
		CreatedDate: "2024-01-01",
	}
}

// DefaultPreferences returns the fallback preference set.
func DefaultPreferences() map[string]interface{} {
	return map[string]interface{}{
		"communication_channel":  "email",
		"language":               "en",
		"timezone":               "UTC",
		"notification_frequency": "normal",
	}
}

// Validate checks the profile against the data quality rules.
func (p *CustomerProfile) Validate() error {
	if err := ValidateCustomerID(p.CustomerID); err != nil {
		return err
	}
	if !p.Tier.Valid() {
		return fmt.Errorf("invalid customer tier: %q", p.Tier)
	}
	switch p.Status {
	case StatusActive, StatusInactive, StatusSuspended:
	default:
		return fmt.Errorf("invalid customer status: %q", p.Status)
	}
	if p.Name == "" {
		return fmt.Errorf("customer name is required")
	}
	return nil
}

// ValidateCustomerID requires a non-empty alphanumeric identifier.
func ValidateCustomerID(id string) error {
	if id == "" {
		return fmt.Errorf("customer id is empty")
	}
	for _, r := range id {
		if !isAlphanumeric(r) {
			return fmt.Errorf("customer id %q contains non-alphanumeric characters", id)
		}
	}
	return nil
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SanitizeText escapes angle brackets and truncates overly long input. The
// cut point backs up to a rune boundary so multi-byte text is never split.
func SanitizeText(text string, maxLength int) string {
	s := strings.ReplaceAll(text, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	if len(s) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return strings.TrimSpace(s)
}
