// internal/pkg/auth/identity.go
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/your-org/storefront-backend/internal/config"
)

// Identity is the tuple the external identity provider supplies for the
// current caller. The provider manages credentials and sessions; this
// service only ever consumes subject and email.
type Identity struct {
	Subject string
	Email   string
}

// identityClaims maps the provider token payload
type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates tokens issued by the external identity provider
type Verifier struct {
	config *config.Config
}

// NewVerifier creates a new identity token verifier
func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		config: cfg,
	}
}

// Verify validates an identity token and extracts the {subject, email} pair
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Identity.JWTSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid identity token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("identity token missing subject")
	}

	if v.config.Identity.Issuer != "" && claims.Issuer != v.config.Identity.Issuer {
		return nil, fmt.Errorf("identity token issued by %q, expected %q", claims.Issuer, v.config.Identity.Issuer)
	}

	return &Identity{
		Subject: claims.Subject,
		Email:   strings.ToLower(claims.Email),
	}, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
