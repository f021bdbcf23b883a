package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "user"
	// RoleAdmin grants access to every profile and the user listing
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks the role against the known set
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserStatus is the lifecycle status of an account
type UserStatus = string

const (
	// UserStatusActive is the default status assigned at registration
	UserStatusActive UserStatus = "active"
	// UserStatusBlocked is terminal, nothing this API exposes moves an
	// account back to active
	UserStatusBlocked UserStatus = "blocked"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"firstName,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"lastName,omitempty"`
	MiddleName    string     `bun:"middle_name,notnull" json:"middleName,omitempty"`
	BirthDate     time.Time  `bun:"birth_date,notnull,type:date" json:"birthDate,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Status        UserStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// EnsureStatus defaults an empty status to active
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// IsBlocked reports whether the account is in the terminal blocked state
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
