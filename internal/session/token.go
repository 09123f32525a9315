package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the fields the gateway reads from a backend-issued token.
// The gateway cannot verify the signature; the backend remains the authority
// and any forged claim is rejected there with a 401.
type Claims struct {
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

// ParseClaims extracts claims from a JWT bearer token without verifying it.
// Opaque (non-JWT) tokens yield empty claims and ok == false.
func ParseClaims(token string) (Claims, bool) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, false
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, false
	}

	var claims Claims
	if id, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(id)
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if exp, ok := mapClaims["exp"].(float64); ok && exp > 0 {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return claims, true
}
