package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims carries the customer identity inside a signed JWT.
type AccessTokenClaims struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Username   string    `json:"username"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input for minting a token.
type AccessTokenPayload struct {
	CustomerID uuid.UUID
	Username   string
	JTI        string
}
