package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// IsStaff reports whether the role may manage the catalog and approve requests.
func (r UserRole) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is the read-only profile row owned by the portal's profile store.
// Only the display name is consumed here.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the acting user identity handed over by the auth layer.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}
