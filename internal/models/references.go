package models

// DeletionPolicy says what happens to rows referencing an actor when that
// actor is deleted.
type DeletionPolicy int

const (
	NullifyOnActorDeletion DeletionPolicy = iota + 1
	CascadeOnActorDeletion
)

func (p DeletionPolicy) String() string {
	switch p {
	case NullifyOnActorDeletion:
		return "nullify"
	case CascadeOnActorDeletion:
		return "cascade"
	}
	return "unknown"
}

// Actor reference names
const (
	RefSystemLastModifiedBy = "audited_systems.last_modified_by"
	RefAccessEventActor     = "access_events.actor_id"
	RefProfileActor         = "actor_profiles.actor_id"
	RefChangeEventActor     = "change_events.actor_id"
)

type ActorReference struct {
	Name   string
	Policy DeletionPolicy
}

// ActorReferences lists every relationship pointing at an actor, in the order
// the cleanup runs. Access history survives its actor; profiles and the
// actor's change events go with it.
var ActorReferences = []ActorReference{
	{Name: RefSystemLastModifiedBy, Policy: NullifyOnActorDeletion},
	{Name: RefAccessEventActor, Policy: NullifyOnActorDeletion},
	{Name: RefProfileActor, Policy: CascadeOnActorDeletion},
	{Name: RefChangeEventActor, Policy: CascadeOnActorDeletion},
}
