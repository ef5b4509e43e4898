package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account es la identidad registrada, con credenciales locales u OAuth.
// PasswordHash nil indica una cuenta solo OAuth.
type Account struct {
	ID                         string     `json:"id"`
	Email                      string     `json:"email"`
	Name                       string     `json:"name"`
	Image                      string     `json:"image,omitempty"`
	Role                       Role       `json:"role"`
	PasswordHash               *string    `json:"-"`
	EmailVerifiedAt            *time.Time `json:"email_verified_at,omitempty"`
	VerificationToken          *string    `json:"-"`
	VerificationTokenExpiresAt *time.Time `json:"-"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

func (a Account) IsVerified() bool {
	return a.EmailVerifiedAt != nil
}

func (a Account) IsOAuthOnly() bool {
	return a.PasswordHash == nil
}
