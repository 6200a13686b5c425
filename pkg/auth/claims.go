package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	UserName  string
	UserEmail string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
// TenantID scopes every request made with the token to one set of books.
type AccessTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	jwt.RegisteredClaims
}
