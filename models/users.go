package models

import "github.com/google/uuid"

// User is a registered requester or staff member. Contributor profile
// fields back the project contributor listings.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Twitter      string    `json:"twitter,omitempty"`
	Staff        bool      `json:"staff"`
}
