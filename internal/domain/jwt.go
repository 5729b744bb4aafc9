package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the JWT claims the engine trusts from the external auth
// layer. Only the user identity matters here; account management is outside
// this service.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
