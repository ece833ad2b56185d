package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the bearer token payload issued by the auth service.
type JWTClaims struct {
	UserID string   `json:"userId"`
	Role   UserRole `json:"role,omitempty"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}
