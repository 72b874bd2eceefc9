package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with access-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	RefreshID string `json:"rid"` // ID of the refresh token
}

// RefreshClaims combines standard claims with the user's email
type RefreshClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
