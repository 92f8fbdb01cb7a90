package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yashjaiswal5859/Doc-Collab/internal/models"
)

// GenerateAccessToken creates a signed HS256 JWT access token for the user
func GenerateAccessToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// Verifier validates HS256 access tokens. It satisfies
// middleware.Verifier and is used directly by the websocket handshake.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates raw, returning the token's claims.
func (vr *Verifier) Verify(ctx context.Context, raw string) (map[string]interface{}, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return vr.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return map[string]interface{}(claims), nil
}

// Subject verifies raw and returns its "sub" claim, the stable user
// identifier every connection must carry.
func (vr *Verifier) Subject(ctx context.Context, raw string) (string, error) {
	claims, err := vr.Verify(ctx, raw)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
