package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type PrincipalType string

const (
	PrincipalRegistered PrincipalType = "registered"
	PrincipalGuest      PrincipalType = "guest"
)

// Principal is the already-authenticated caller.
type Principal struct {
	Sub  string        `json:"sub"`
	Type PrincipalType `json:"type"`
}

// OwnerKind maps the principal onto a cart owner kind. Anything but guest is registered.
func (p Principal) OwnerKind() OwnerKind {
	if p.Type == PrincipalGuest {
		return OwnerKindGuest
	}

	return OwnerKindRegistered
}

// JWT claims structure
type Claims struct {
	Email string        `json:"email,omitempty"`
	Type  PrincipalType `json:"type,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{Sub: c.Subject, Type: c.Type}
}

type GuestSession struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
