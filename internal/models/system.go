package models

import "time"

const (
	SystemNameMaxLen        = 100
	SystemDescriptionMaxLen = 4000
)

// AuditedSystem is an application or database under compliance review.
type AuditedSystem struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	LastModifiedBy *int64    `json:"last_modified_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
