// internal/pkg/auth/identity_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

const testSecret = "test-secret-needs-32-characters!!"

func testConfig(issuer string) *config.Config {
	return &config.Config{
		Identity: config.IdentityConfig{
			JWTSecret: testSecret,
			Issuer:    issuer,
		},
	}
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Email:            email,
		RegisteredClaims: claims,
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(testConfig(""))

	tokenString := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "Customer@Example.COM")

	identity, err := verifier.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-123", identity.Subject)
	assert.Equal(t, "customer@example.com", identity.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewVerifier(testConfig(""))

	tokenString := signToken(t, "another-secret-that-is-also-long!", jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "user@example.com")

	_, err := verifier.Verify(tokenString)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier(testConfig(""))

	tokenString := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, "user@example.com")

	_, err := verifier.Verify(tokenString)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	verifier := NewVerifier(testConfig(""))

	tokenString := signToken(t, testSecret, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "user@example.com")

	_, err := verifier.Verify(tokenString)
	assert.Error(t, err)
}

func TestVerifyChecksIssuer(t *testing.T) {
	verifier := NewVerifier(testConfig("https://id.example.com/"))

	matching := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		Issuer:    "https://id.example.com/",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "user@example.com")
	_, err := verifier.Verify(matching)
	assert.NoError(t, err)

	mismatched := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		Issuer:    "https://evil.example.com/",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "user@example.com")
	_, err = verifier.Verify(mismatched)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc.def.ghi", "abc.def.ghi"},
		{"missing scheme", "abc.def.ghi", ""},
		{"wrong scheme", "Basic abc.def.ghi", ""},
		{"empty header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenFromHeader(tt.header))
		})
	}
}
