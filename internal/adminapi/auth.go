package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// issueToken signs a short-lived admin session token, the same MapClaims
// shape (exp/iat/nbf plus a subject) the pack's telegram webapp issues for
// its player sessions. jti is a random UUID so issued tokens are
// individually distinguishable in the access log even when two logins
// happen in the same second.
func issueToken(secret, subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"jti": uuid.Must(uuid.NewV4()).String(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(12 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

var errInvalidToken = errors.New("adminapi: invalid or expired token")

func parseToken(secret, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", errInvalidToken
	}
	return sub, nil
}

// requireToken accepts the token from either the Authorization header (for
// regular API calls) or a ?token= query parameter (for the WebSocket
// upgrade, which can't carry custom headers from a browser client).
func requireToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			header := c.GetHeader("Authorization")
			raw = strings.TrimPrefix(header, "Bearer ")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		sub, err := parseToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("admin_subject", sub)
		c.Next()
	}
}
