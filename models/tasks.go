package models

import (
	"time"

	"github.com/google/uuid"
)

// Task types in the staff work queue.
const (
	TaskOrphan        = "orphan"
	TaskResponse      = "response"
	TaskStaleAgency   = "stale_agency"
	TaskFlagged       = "flagged"
	TaskNewAgency     = "new_agency"
	TaskProjectReview = "project_review"
	TaskCrowdfund     = "crowdfund"
	TaskSnailMail     = "snail_mail"
)

// Orphan task reasons.
const (
	OrphanBadSender       = "bad_sender"
	OrphanIncomingBlocked = "incoming_blocked"
	OrphanInvalidAddress  = "invalid_address"
)

// Task is a unit of staff work generated by a system event. The type
// determines which of the object references are set.
type Task struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Resolved   bool       `json:"resolved"`
	Assigned   string     `json:"assigned,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DateDone   *time.Time `json:"date_done,omitempty"`

	AgencyID        *uuid.UUID `json:"agency_id,omitempty"`
	RequestID       *uuid.UUID `json:"request_id,omitempty"`
	CommunicationID *uuid.UUID `json:"communication_id,omitempty"`
	ProjectID       *uuid.UUID `json:"project_id,omitempty"`
	CrowdfundID     *uuid.UUID `json:"crowdfund_id,omitempty"`

	// Reason applies to orphan tasks, Text to flagged tasks, Address to
	// orphaned inbound mail, AmountCents to snail mail payment tasks.
	Reason      string `json:"reason,omitempty"`
	Text        string `json:"text,omitempty"`
	Address     string `json:"address,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

// TasksResponse holds a list of tasks.
type TasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// StaleAgencyReview is the staff view of a stale agency task: the agency,
// its stale sub-requests ordered by silence, and the most recent response
// the agency has ever sent.
type StaleAgencyReview struct {
	Task           Task           `json:"task"`
	Agency         Agency         `json:"agency"`
	StaleRequests  []StaleRequest `json:"stale_requests"`
	LatestResponse *Communication `json:"latest_response,omitempty"`
}
