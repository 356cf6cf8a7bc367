// Package identity authenticates accounts and resolves them into authz actors.
package identity

import "time"

// Account is a stored login account. Role and Department are raw strings from
// the store; they are normalized when the account is turned into an actor.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Department   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
