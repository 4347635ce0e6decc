package booking

import "time"

type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleOwner       Role = "OWNER"
	RoleSystemAdmin Role = "SYSADMIN"
)

type Actor struct {
	ID   uint
	Role Role
}

// SystemActor performs transitions triggered by the platform itself (payment callbacks).
var SystemActor = Actor{Role: RoleSystemAdmin}

func (a Actor) IsAdmin() bool { return a.Role == RoleSystemAdmin }

// UserID is nil for the platform actor.
func (a Actor) UserID() *uint {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
