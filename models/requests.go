package models

import (
	"time"

	"github.com/google/uuid"
)

// Request statuses, in rough lifecycle order.
const (
	StatusStarted   = "started"   // draft
	StatusSubmitted = "submitted" // processing, not yet sent
	StatusAck       = "ack"       // awaiting acknowledgement
	StatusProcessed = "processed" // awaiting response
	StatusAppealing = "appealing" // awaiting appeal
	StatusFix       = "fix"       // fix required
	StatusPayment   = "payment"   // payment required
	StatusLawsuit   = "lawsuit"   // in litigation
	StatusRejected  = "rejected"
	StatusNoDocs    = "no_docs" // no responsive documents
	StatusDone      = "done"    // completed
	StatusPartial   = "partial" // partially completed
	StatusAbandoned = "abandoned"
)

// EndStatuses are the terminal statuses. A request in one of these is no
// longer waiting on the agency.
var EndStatuses = []string{StatusRejected, StatusNoDocs, StatusDone, StatusPartial, StatusAbandoned}

// OpenStatuses are the statuses in which we are awaiting an agency response.
var OpenStatuses = []string{StatusAck, StatusProcessed, StatusAppealing}

// IsEndStatus reports whether status is terminal.
func IsEndStatus(status string) bool {
	for _, s := range EndStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is a known request status.
func IsValidStatus(status string) bool {
	switch status {
	case StatusStarted, StatusSubmitted, StatusAck, StatusProcessed,
		StatusAppealing, StatusFix, StatusPayment, StatusLawsuit,
		StatusRejected, StatusNoDocs, StatusDone, StatusPartial,
		StatusAbandoned:
		return true
	}
	return false
}

// Jurisdiction levels.
const (
	LevelFederal = "federal"
	LevelState   = "state"
	LevelLocal   = "local"
)

// Jurisdiction is the government level a request is filed under. Days is
// the statutory response period, if one exists.
type Jurisdiction struct {
	Name  string `json:"name"`
	Level string `json:"level"`
	Days  *int   `json:"days,omitempty"`
}

// Request is a public records request tracked through its lifecycle.
type Request struct {
	ID            uuid.UUID    `json:"id"`
	Username      string       `json:"username"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Status        string       `json:"status"`
	Jurisdiction  Jurisdiction `json:"jurisdiction"`
	AgencyID      *uuid.UUID   `json:"agency_id,omitempty"`
	RequestedDocs string       `json:"requested_docs"`
	Description   string       `json:"description,omitempty"`
	TrackingID    string       `json:"tracking_id,omitempty"`

	// MailID is the local part of the unique inbound address for this
	// request, e.g. "<id>-00482915@requests.example.com".
	MailID   string   `json:"mail_id,omitempty"`
	Email    string   `json:"email,omitempty"`
	CCEmails []string `json:"cc_emails,omitempty"`

	DateSubmitted *time.Time `json:"date_submitted,omitempty"`
	DateUpdated   *time.Time `json:"date_updated,omitempty"`
	DateDone      *time.Time `json:"date_done,omitempty"`
	DateDue       *time.Time `json:"date_due,omitempty"`
	DaysUntilDue  *int       `json:"days_until_due,omitempty"`
	DateFollowup  *time.Time `json:"date_followup,omitempty"`
	DateEstimate  *time.Time `json:"date_estimate,omitempty"`

	Embargo          bool       `json:"embargo"`
	PermanentEmbargo bool       `json:"permanent_embargo"`
	DateEmbargo      *time.Time `json:"date_embargo,omitempty"`

	// PriceCents is the fee the agency has requested, in cents.
	PriceCents int64 `json:"price_cents"`

	DisableAutofollowups bool `json:"disable_autofollowups"`
	BlockIncoming        bool `json:"block_incoming"`

	CrowdfundID *uuid.UUID `json:"crowdfund_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsEditable reports whether the request is still a draft.
func (r *Request) IsEditable() bool {
	return r.Status == StatusStarted
}

// IsOpen reports whether we are awaiting a response from the agency.
func (r *Request) IsOpen() bool {
	for _, s := range OpenStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// IsPublic reports whether the request is viewable by anyone.
func (r *Request) IsPublic() bool {
	return r.Status != StatusStarted && !r.Embargo
}

// Viewable reports whether the named user may view this request.
func (r *Request) Viewable(username string, staff bool) bool {
	if staff || r.Username == username {
		return true
	}
	return r.IsPublic()
}

// StaleRequest pairs a request with the age of the agency's most recent
// response, for the stale agency review queue.
type StaleRequest struct {
	Request
	DaysSinceResponse *int `json:"days_since_response,omitempty"`
}

// RequestsResponse holds a list of requests.
type RequestsResponse struct {
	Requests []Request `json:"requests"`
}
