package prms

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the PRMS API puts in its bearer tokens.
type Claims struct {
	UserID    string `json:"id"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	PatientID string `json:"patientId,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims reads the claims of token without verifying its signature. The
// server is the authority; the console only uses claims to pick a dashboard
// and to notice expiry before the server does.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	if token == "" {
		return claims, errors.New("token is empty")
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}
