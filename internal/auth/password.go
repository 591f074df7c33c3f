package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("incorrect username or password")

type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type account struct {
	user User
	hash []byte
}

// Authenticator checks passwords against a fixed set of accounts. Passwords
// are only held as bcrypt hashes.
type Authenticator struct {
	accounts map[string]account
}

// NewAuthenticator returns an authenticator with a single admin account.
// An empty password leaves the account disabled.
func NewAuthenticator(adminPassword string) (*Authenticator, error) {
	a := &Authenticator{accounts: map[string]account{}}
	if adminPassword == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	a.accounts["admin"] = account{user: User{Username: "admin", Role: RoleAdmin}, hash: hash}
	return a, nil
}

func (a *Authenticator) Authenticate(_ context.Context, username, password string) (*User, error) {
	acct, ok := a.accounts[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := acct.user
	return &u, nil
}

// Lookup returns the account for username, or nil when it does not exist.
func (a *Authenticator) Lookup(username string) *User {
	acct, ok := a.accounts[username]
	if !ok {
		return nil
	}
	u := acct.user
	return &u
}
