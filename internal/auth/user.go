// Package auth implements user accounts for Briefer: registration, password
// login, bearer token issuance and validation, and the persona that tailors
// generated decks to the signed-in user.
package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CompanyName  string    `json:"company_name"`
	Email        string    `json:"email"`
	Persona      string    `json:"persona"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterCommand carries the data needed to create an account.
type RegisterCommand struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Normalize trims whitespace and lowercases the email address.
func (c *RegisterCommand) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

// Validate reports the first missing or malformed field.
func (c RegisterCommand) Validate() error {
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}

// LoginResult is returned by a successful password login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Persona     string `json:"persona"`
}
