package domain

import (
	"strings"
	"time"
)

// Role is a user's platform-wide role.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

const (
	DefaultTimezone = "UTC"
	DefaultLocale   = "en"
)

type User struct {
	ID            string
	Email         string
	PendingEmail  *string // set while an email change awaits confirmation
	Username      string
	PasswordHash  string // argon2 encoded, empty when no password is set
	EmailVerified bool
	GlobalRole    Role
	Country       string // ISO 3166-1 alpha-2, optional
	Timezone      string
	Locale        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Active reports whether the user has not been soft-deleted.
func (u User) Active() bool {
	return u.DeletedAt == nil
}

// PublicUser is the view of a user that may be shown to anyone.
type PublicUser struct {
	ID       string
	Username string
	Role     Role
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.GlobalRole}
}

// NormalizeEmail trims and lower-cases an address so lookups and storage
// agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
