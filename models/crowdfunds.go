package models

import (
	"time"

	"github.com/google/uuid"
)

// Crowdfund is a fundraising campaign attached to a request or a project.
// Amounts are in cents.
type Crowdfund struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	// PaymentCapped campaigns never accept more than the required amount
	// and close as soon as the goal is reached.
	PaymentCapped        bool       `json:"payment_capped"`
	PaymentRequiredCents int64      `json:"payment_required_cents"`
	PaymentReceivedCents int64      `json:"payment_received_cents"`
	DateDue              *time.Time `json:"date_due,omitempty"`
	Closed               bool       `json:"closed"`

	RequestID *uuid.UUID `json:"request_id,omitempty"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the campaign is no longer accepting payments.
func (c *Crowdfund) Expired(now time.Time) bool {
	if c.Closed {
		return true
	}
	return c.DateDue != nil && !now.Before(*c.DateDue)
}

// AmountRemainingCents reports how much is still needed to reach the goal.
func (c *Crowdfund) AmountRemainingCents() int64 {
	return c.PaymentRequiredCents - c.PaymentReceivedCents
}

// PercentFunded reports funding progress as a whole percentage.
func (c *Crowdfund) PercentFunded() int {
	if c.PaymentRequiredCents == 0 {
		return 0
	}
	return int(c.PaymentReceivedCents * 100 / c.PaymentRequiredCents)
}

// CrowdfundPayment is a single contribution to a campaign.
type CrowdfundPayment struct {
	ID          uuid.UUID `json:"id"`
	CrowdfundID uuid.UUID `json:"crowdfund_id"`
	Username    string    `json:"username,omitempty"`
	Name        string    `json:"name,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	// Show indicates the contributor agreed to be listed publicly.
	Show      bool      `json:"show"`
	ChargeID  string    `json:"charge_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CrowdfundDetail is a campaign with its payments and contributor counts,
// as rendered by the crowdfund widget.
type CrowdfundDetail struct {
	Crowdfund             Crowdfund          `json:"crowdfund"`
	Payments              []CrowdfundPayment `json:"payments"`
	ContributorsCount     int                `json:"contributors_count"`
	AnonymousContributors int                `json:"anonymous_contributors"`
	PercentFunded         int                `json:"percent_funded"`
}

// CrowdfundsResponse holds a list of crowdfunds.
type CrowdfundsResponse struct {
	Crowdfunds []Crowdfund `json:"crowdfunds"`
}
