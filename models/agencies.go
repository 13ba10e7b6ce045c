package models

import (
	"time"

	"github.com/google/uuid"
)

// Agency approval statuses.
const (
	AgencyPending  = "pending"
	AgencyApproved = "approved"
	AgencyRejected = "rejected"
)

// Agency is a government body that receives records requests.
type Agency struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Status   string     `json:"status"`
	Email    string     `json:"email,omitempty"`
	CCEmails []string   `json:"cc_emails,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	Fax      string     `json:"fax,omitempty"`
	Address  string     `json:"address,omitempty"`
	Stale    bool       `json:"stale"`
	// ManualStale keeps the agency stale regardless of response history.
	ManualStale    bool       `json:"manual_stale"`
	AppealAgencyID *uuid.UUID `json:"appeal_agency_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AgenciesResponse holds a list of agencies.
type AgenciesResponse struct {
	Agencies []Agency `json:"agencies"`
}
