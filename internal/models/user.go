package models

import "time"

// Role is a user's role within the workshop.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleExecutor Role = "executor"
	RoleStoreman Role = "storeman"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleExecutor, RoleStoreman, RoleAdmin:
		return true
	}
	return false
}

// ManagesStock reports whether the role may allocate stock, create
// receipts and run stocktakes.
func (r Role) ManagesStock() bool {
	return r == RoleStoreman || r == RoleAdmin
}

// UserStatus is the account state.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// User identifies an acting user. Core operations take the acting user as
// an explicit argument; nothing in the engine reads ambient identity.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	FullName     string
	Department   string
	Status       UserStatus
	CreatedAt    time.Time
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.Status == UserActive
}
