// Package models contains the domain entities
package models

import "fmt"

// ActorKind discriminates the account type a membership, post, comment or
// like belongs to. Communities never store a bare ID; every participant
// reference is qualified by its kind.
type ActorKind string

const (
	ActorKindStudent ActorKind = "STUDENT"
	ActorKindMentor  ActorKind = "MENTOR"
)

// IsValid reports whether the kind is one of the known actor kinds
func (k ActorKind) IsValid() bool {
	return k == ActorKindStudent || k == ActorKindMentor
}

// ParseActorKind converts a string into an ActorKind
func ParseActorKind(s string) (ActorKind, error) {
	kind := ActorKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown actor kind: %q", s)
	}
	return kind, nil
}

// ActorRef is a typed reference to a student or mentor account
type ActorRef struct {
	Kind ActorKind
	ID   int64
}

// Equal reports whether two references identify the same account
func (r ActorRef) Equal(other ActorRef) bool {
	return r.Kind == other.Kind && r.ID == other.ID
}

// String renders the reference as kind/id
func (r ActorRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// ActorProfile carries the display information resolved from the identity
// store.
type ActorProfile struct {
	Ref   ActorRef
	Name  string
	Email string
}
