package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI doubles as the session key; a random one is generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject
// carries the user id as well so generic JWT tooling can read it.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate implements jwt.ClaimsValidator and runs after the registered claim
// checks.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("token missing user id")
	}
	if c.Subject != c.UserID.String() {
		return fmt.Errorf("token subject does not match user id")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", c.Role)
	}
	if c.ID == "" {
		return fmt.Errorf("token missing jti")
	}
	return nil
}
