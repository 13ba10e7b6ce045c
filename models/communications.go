package models

import (
	"time"

	"github.com/google/uuid"
)

// Communication delivery methods.
const (
	DeliveredEmail = "email"
	DeliveredFax   = "fax"
	DeliveredMail  = "mail"
)

// Communication is a single message on a request's thread, either sent to
// the agency or received from it.
type Communication struct {
	ID uuid.UUID `json:"id"`
	// RequestID is nil for orphaned inbound mail.
	RequestID *uuid.UUID `json:"request_id,omitempty"`
	From      string     `json:"from"`
	To        string     `json:"to,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Body      string     `json:"body"`
	// Response is true for messages received from the agency.
	Response      bool      `json:"response"`
	Autogenerated bool      `json:"autogenerated"`
	DeliveredBy   string    `json:"delivered_by,omitempty"`
	Date          time.Time `json:"date"`
}
