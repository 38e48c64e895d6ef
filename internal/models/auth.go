package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of externally issued access tokens.
// Identity resolution (login, token issuance) lives outside this service;
// only validation and claim extraction happen here.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	// Caps carries delegated capability grants beyond the role defaults,
	// e.g. a teacher appointed as achievement reviewer.
	Caps []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// Actor materialises the acting principal from the token claims.
func (c *JWTClaims) Actor() *Actor {
	if c == nil {
		return nil
	}
	delegated := make([]Capability, 0, len(c.Caps))
	for _, raw := range c.Caps {
		delegated = append(delegated, Capability(raw))
	}
	return NewActor(c.UserID, c.Role, delegated...)
}
