package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseIdentity membaca user_id dan role dari token yang diberikan
// server. Token hanya di-decode, tidak diverifikasi: verifikasi
// signature adalah urusan server, client cuma butuh identitasnya
// untuk handshake websocket.
func ParseIdentity(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.New("invalid token")
	}

	if claims.UserID == "" || claims.Role == "" {
		return nil, errors.New("token has no identity claims")
	}

	return claims, nil
}
