package repository

import "time"

// UserMutation describes a change to a single user row. Values are built with
// the constructors below and applied by UserRepository.Apply, which returns a
// freshly read record instead of mutating the caller's copy.
type UserMutation struct {
	name          string
	passwordHash  *string
	token         *string
	tokenIssuedAt *time.Time
	clearToken    bool
	markVerified  bool
}

// IssueOneTimeToken stores a new verification or reset code issued at the given time.
func IssueOneTimeToken(code string, issuedAt time.Time) UserMutation {
	return UserMutation{name: "issue_one_time_token", token: &code, tokenIssuedAt: &issuedAt}
}

// MarkVerified flags the account as verified and consumes the pending code.
func MarkVerified() UserMutation {
	return UserMutation{name: "mark_verified", markVerified: true, clearToken: true}
}

// ResetPassword replaces the password hash and consumes the pending code.
func ResetPassword(hash string) UserMutation {
	return UserMutation{name: "reset_password", passwordHash: &hash, clearToken: true}
}

// ChangePassword replaces the password hash and leaves any pending code untouched.
func ChangePassword(hash string) UserMutation {
	return UserMutation{name: "change_password", passwordHash: &hash}
}

// Name identifies the mutation in logs.
func (m UserMutation) Name() string { return m.name }

// columns returns the column assignments for the mutation. Verification is
// only ever set, never unset.
func (m UserMutation) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if m.passwordHash != nil {
		cols["password"] = *m.passwordHash
	}
	if m.token != nil {
		cols["one_time_token"] = *m.token
		cols["one_time_token_issued_at"] = *m.tokenIssuedAt
	}
	if m.clearToken {
		cols["one_time_token"] = nil
		cols["one_time_token_issued_at"] = nil
	}
	if m.markVerified {
		cols["verified"] = true
	}
	return cols
}
