package auth

import (
	"context"
	"errors"

	"github.com/shikhoron/qna-service/internal/config"
	"github.com/shikhoron/qna-service/internal/models"
)

// Credential check errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountSuspended   = errors.New("account suspended")
)

// CredentialKind names the variant that matched a login attempt.
type CredentialKind int

const (
	// CredentialConfiguredAdmin matched the fixed administrator pair from
	// configuration. No stored-hash comparison is involved.
	CredentialConfiguredAdmin CredentialKind = iota
	// CredentialStoredUser matched a database user via bcrypt comparison.
	CredentialStoredUser
)

// Credential is the outcome of a login check: which variant matched and,
// when a user row exists, that row.
type Credential struct {
	Kind CredentialKind
	User *models.User // nil only for a configured admin with no backing row
}

// UserLookup resolves an email to a stored user. A missing user returns
// (nil, nil).
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialChecker evaluates login attempts in a defined order:
// the configured admin pair first, stored users second.
type CredentialChecker struct {
	admin config.AdminConfig
	users UserLookup
}

func NewCredentialChecker(admin config.AdminConfig, users UserLookup) *CredentialChecker {
	return &CredentialChecker{admin: admin, users: users}
}

// Check validates an email+password pair. Configured-admin matches bypass
// the stored hash entirely; stored users are bcrypt-verified and rejected
// with ErrAccountSuspended when flagged.
func (c *CredentialChecker) Check(ctx context.Context, email, password string) (*Credential, error) {
	if c.admin.Email != "" && email == c.admin.Email && password == c.admin.Password {
		user, err := c.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &Credential{Kind: CredentialConfiguredAdmin, User: user}, nil
	}

	user, err := c.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.Suspended {
		return nil, ErrAccountSuspended
	}
	if !user.ComparePassword(password) {
		return nil, ErrInvalidCredentials
	}

	return &Credential{Kind: CredentialStoredUser, User: user}, nil
}

// Actor builds the session identity for a matched credential.
func (cr *Credential) Actor() AuthContext {
	actor := AuthContext{}
	if cr.User != nil {
		actor.UserID = cr.User.ID
		actor.Role = cr.User.Role
	}
	switch cr.Kind {
	case CredentialConfiguredAdmin:
		actor.IsAdmin = true
		actor.Role = models.RoleAdmin
	case CredentialStoredUser:
		switch cr.User.Role {
		case models.RoleAdmin:
			actor.IsAdmin = true
		case models.RoleModerator:
			actor.IsModerator = true
		}
	}
	return actor
}
