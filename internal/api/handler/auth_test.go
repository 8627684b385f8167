package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TestGenerateAndParseToken verifies that a signed token round-trips its
// subject and role claims.
func TestGenerateAndParseToken(t *testing.T) {
	// Arrange
	t.Setenv("JWT_SECRET", "unit-test-secret")

	// Act
	token, err := generateJWT("citizen-42", "citizen")
	assert.NoError(t, err)
	subject, role, err := parseToken(token)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "citizen-42", subject)
	assert.Equal(t, "citizen", role)
}

// TestParseToken_WrongSecret verifies that a token signed under one secret is
// rejected once the secret changes.
func TestParseToken_WrongSecret(t *testing.T) {
	// Arrange
	t.Setenv("JWT_SECRET", "original-secret")
	token, err := generateJWT("citizen-42", "citizen")
	assert.NoError(t, err)

	// Act
	t.Setenv("JWT_SECRET", "rotated-secret")
	subject, role, err := parseToken(token)

	// Assert
	assert.Error(t, err)
	assert.Empty(t, subject)
	assert.Empty(t, role)
}

// TestParseToken_Expired verifies that a token past its expiry is rejected.
func TestParseToken_Expired(t *testing.T) {
	// Arrange
	t.Setenv("JWT_SECRET", "unit-test-secret")
	claims := jwt.MapClaims{
		"sub":  "citizen-42",
		"role": "citizen",
		"exp":  time.Now().Add(-time.Hour).Unix(),
		"iss":  tokenIssuer,
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	assert.NoError(t, err)

	// Act
	_, _, err = parseToken(expired)

	// Assert
	assert.Error(t, err)
}

// TestParseToken_MissingSubject verifies that a structurally valid token
// without a subject claim is rejected.
func TestParseToken_MissingSubject(t *testing.T) {
	// Arrange
	t.Setenv("JWT_SECRET", "unit-test-secret")
	token, err := generateJWT("", "citizen")
	assert.NoError(t, err)

	// Act
	_, _, err = parseToken(token)

	// Assert
	assert.EqualError(t, err, "token has no subject")
}

// TestParseToken_Garbage verifies that arbitrary input does not parse.
func TestParseToken_Garbage(t *testing.T) {
	// Act
	_, _, err := parseToken("definitely.not.a-jwt")

	// Assert
	assert.Error(t, err)
}
