// internal/models/enums.go
package models

import (
	"encoding/json"
	"fmt"
)

// CustomerTier is the customer service level affecting SLA and response tone.
type CustomerTier string

const (
	TierStandard   CustomerTier = "standard"
	TierPremium    CustomerTier = "premium"
	TierEnterprise CustomerTier = "enterprise"
)

// Priority levels for customer issues.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IssueCategory classifies a customer issue. IssueCategories below fixes the
// enumeration order used for classification tie-breaking.
type IssueCategory string

const (
	CategoryBilling   IssueCategory = "billing"
	CategoryTechnical IssueCategory = "technical"
	CategoryAccount   IssueCategory = "account"
	CategoryProduct   IssueCategory = "product"
	CategoryGeneral   IssueCategory = "general"
)

// IssueCategories lists all categories in declaration order.
var IssueCategories = []IssueCategory{
	CategoryBilling,
	CategoryTechnical,
	CategoryAccount,
	CategoryProduct,
	CategoryGeneral,
}

// Sentiment of a customer message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// PriorityOrder maps levels to a comparable rank (low=0 .. critical=3).
var PriorityOrder = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

func (t CustomerTier) Valid() bool {
	switch t {
	case TierStandard, TierPremium, TierEnterprise:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (c IssueCategory) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryAccount, CategoryProduct, CategoryGeneral:
		return true
	}
	return false
}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// ParseCustomerTier converts a string into a CustomerTier, rejecting unknown values.
func ParseCustomerTier(s string) (CustomerTier, error) {
	t := CustomerTier(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid customer tier: %q", s)
	}
	return t, nil
}

// ParsePriority converts a string into a Priority, rejecting unknown values.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority level: %q", s)
	}
	return p, nil
}

// Enum-valued fields must round-trip through their string form without loss.
// Unknown values fail unmarshalling instead of being coerced.

func (t *CustomerTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCustomerTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (c *IssueCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if cat := IssueCategory(s); cat.Valid() {
		*c = cat
		return nil
	}
	return fmt.Errorf("invalid issue category: %q", s)
}

func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if sent := Sentiment(str); sent.Valid() {
		*s = sent
		return nil
	}
	return fmt.Errorf("invalid sentiment: %q", str)
}
