package models

import "time"

// User is a registered account. Email verification and password reset share
// the single OneTimeToken column; a non-nil value means a flow is pending.
type User struct {
	Base
	Name                 string     `gorm:"not null" json:"name"`
	Email                string     `gorm:"uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	Verified             bool       `gorm:"not null;default:false" json:"verified"`
	OneTimeToken         *string    `gorm:"size:6;uniqueIndex" json:"-"`
	OneTimeTokenIssuedAt *time.Time `json:"-"`
	Budgets              []Budget   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"budgets,omitempty"`
}

// HasPendingToken reports whether a verification or reset code is outstanding.
func (u *User) HasPendingToken() bool {
	return u.OneTimeToken != nil && *u.OneTimeToken != ""
}

// TokenExpired reports whether the pending code was issued more than ttl ago.
// Codes without an issue timestamp are treated as expired.
func (u *User) TokenExpired(now time.Time, ttl time.Duration) bool {
	if u.OneTimeTokenIssuedAt == nil {
		return true
	}
	return now.Sub(*u.OneTimeTokenIssuedAt) > ttl
}

// Identity is the sanitized view of a user attached to authenticated requests.
// It never carries the password hash, token, verification flag or timestamps.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the sanitized view of the user.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}
