package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	// RoleSystem is used by internal processors (maturity sweep); it never
	// arrives over the wire.
	RoleSystem Role = "system"
)

// Actor is the verified identity a request acts as. Authentication happens
// upstream; services only check role and ownership.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Privileged reports whether the actor may resolve holds and reports.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager || a.Role == RoleSystem
}

// PermanentBanUntil is the far-future sentinel for permanent bans.
var PermanentBanUntil = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// User carries the settlement-relevant slice of an account. AvailableBalance
// and PendingBalance are only ever mutated through atomic signed increments
// in storage, never read-modify-write.
type User struct {
	ID               uuid.UUID
	Username         string
	Role             Role
	Active           bool
	BanUntil         *time.Time
	AvailableBalance int64
	PendingBalance   int64
	CreatedAt        time.Time
}
