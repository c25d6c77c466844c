package domain

import "strings"

// ActorRole identifies who is driving an operation
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleProvider ActorRole = "provider"
	RoleAdmin    ActorRole = "admin"
	RoleSystem   ActorRole = "system"
)

// IsValid checks if the role is a known ActorRole
func (r ActorRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of ActorRole
func (r ActorRole) String() string {
	return string(r)
}

// Actor is the authenticated identity driving an operation. The reservation
// core trusts it as supplied by the auth layer and does not re-verify
// credentials.
type Actor struct {
	ID   string    `json:"id"`
	Role ActorRole `json:"role"`
}

// SystemActor is the actor attached to machine-driven mutations.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// Validate validates the actor identity
func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" || !a.Role.IsValid() {
		return ErrInvalidActor
	}
	return nil
}
