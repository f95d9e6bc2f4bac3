package model

import "time"

// Roles stored in users.role.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is an account.  PasswordHash is nil for accounts created through
// Google sign-in that never set a password.  Users are never hard-deleted
// in normal operation.
type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash *string   `json:"-" gorm:"size:255"`
	Name         string    `json:"name" gorm:"size:255"`
	Role         string    `json:"role" gorm:"size:16;not null;default:customer"`
	IsVerified   bool      `json:"is_verified" gorm:"not null;default:false"`
	GoogleID     *string   `json:"-" gorm:"size:64;uniqueIndex"`
	AvatarURL    string    `json:"avatar_url,omitempty" gorm:"size:512"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken is one link of a rotating refresh chain.  Only the SHA-256
// hex digest of the raw token is stored.  Refreshing revokes the row and
// points ReplacedByID at its successor.
type RefreshToken struct {
	ID           uint64     `json:"id" gorm:"primaryKey"`
	UserID       uint64     `json:"user_id" gorm:"index;not null"`
	User         *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TokenHash    string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty" gorm:"index"`
	ReplacedByID *uint64    `json:"replaced_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Active reports whether the token can still be exchanged at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// LegacyUser mirrors the older "Users" table that the ledger still
// references for RecordedBy.  Rows are keyed by email and only created by
// the explicit provisioning action.
type LegacyUser struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the legacy table separate from users.
func (LegacyUser) TableName() string { return "legacy_users" }
