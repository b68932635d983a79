package models

import "time"

// Change types
const (
	ChangeCreate = "CREATE"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

var ChangeTypeLabels = map[string]string{
	ChangeCreate: "Create",
	ChangeUpdate: "Update",
	ChangeDelete: "Delete",
}

// Entity kinds recorded in the change trail
const (
	EntityKindSystem      = "System"
	EntityKindUserProfile = "UserProfile"
)

// ChangeEvent is append-only. Every change is attributed at write time;
// ActorID is only nil when the mutated record carried no attribution.
type ChangeEvent struct {
	ID            int64     `json:"id"`
	ActorID       *int64    `json:"actor_id,omitempty"`
	ActorUsername *string   `json:"actor_username,omitempty"`
	ChangeType    string    `json:"change_type"`
	EntityKind    string    `json:"entity_kind"`
	EntityID      int64     `json:"entity_id"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

func IsValidChangeType(t string) bool {
	_, ok := ChangeTypeLabels[t]
	return ok
}
