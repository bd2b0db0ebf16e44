package domain

import (
	"context"
	"time"
)

// Role is the kind of account: students register for events, clubs publish them.
type Role string

const (
	RoleStudent Role = "student"
	RoleClub    Role = "club"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleClub
}

// Account is a stored user record. Password holds a bcrypt hash, never the plain text.
// swagger:model Account
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	ClubName string `json:"clubName,omitempty"`
}

// NewAccount returns a new Account. The caller supplies the already hashed password.
func NewAccount(id, email, passwordHash, name string, role Role, clubName string) *Account {
	return &Account{
		ID:       id,
		Email:    email,
		Password: passwordHash,
		Name:     name,
		Role:     role,
		ClubName: clubName,
	}
}

// Identity returns the public view of the account.
func (a *Account) Identity() *Identity {
	return &Identity{
		ID:       a.ID,
		Email:    a.Email,
		Name:     a.Name,
		Role:     a.Role,
		ClubName: a.ClubName,
	}
}

// Identity is an authenticated account as seen by the rest of the app.
// swagger:model Identity
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	ClubName string `json:"clubName,omitempty"`
}

// IsClub reports whether the identity acts on behalf of a club.
func (i *Identity) IsClub() bool {
	return i != nil && i.Role == RoleClub && i.ClubName != ""
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// SessionClaims are the identity fields carried by a session token.
type SessionClaims struct {
	AccountID string
	Email     string
	Role      Role
	ClubName  string
}

// TokenIssuer issues session tokens for an authenticated account.
type TokenIssuer interface {
	Issue(claims SessionClaims, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*SessionClaims, error)
}

// SessionService authenticates against the accounts collection and tracks the
// process-wide current identity.
type SessionService interface {
	// Login returns nil, nil when no account matches the credentials.
	Login(ctx context.Context, email, password string) (*Identity, error)
	// Signup always creates a student account.
	Signup(ctx context.Context, name, email, password string) (*Identity, error)
	GetByID(ctx context.Context, id string) (*Identity, error)
	Current() *Identity
	Logout()
}
