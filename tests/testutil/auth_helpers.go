package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

const (
	TestJWTSecret   = "campuscarry-test-secret"
	TestJWTIssuer   = "campuscarry-api"
	TestJWTAudience = "campuscarry-app"
)

// MockAuth stands in for the bearer token middleware: the X-Test-Subject header becomes
// the authenticated subject, and requests without it are rejected with 401.
func MockAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader("X-Test-Subject")
		if subject == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Failed to validate JWT.", "code": "UNAUTHORIZED"})
			return
		}
		c.Set("user_id", subject)
		c.Next()
	}
}

// SignToken mints an HS256 bearer token accepted by the shared-secret validator
func SignToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	return SignTokenWithScope(t, secret, subject, "", ttl)
}

// SignTokenWithScope is SignToken with a space-separated scope claim
func SignTokenWithScope(t *testing.T, secret, subject, scope string, ttl time.Duration) string {
	t.Helper()

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	now := time.Now()
	claims := jwt.Claims{
		Subject:   subject,
		Issuer:    TestJWTIssuer,
		Audience:  jwt.Audience{TestJWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		Expiry:    jwt.NewNumericDate(now.Add(ttl)),
	}

	builder := jwt.Signed(signer).Claims(claims)
	if scope != "" {
		builder = builder.Claims(map[string]interface{}{"scope": scope})
	}
	token, err := builder.CompactSerialize()
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}
