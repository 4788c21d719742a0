package utils // helpers for token creation, verification and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails parsing, signature or
// expiry checks, or carries no usable subject claim.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken is a serialized HS256 JWT together with its expiry.
// Access tokens are short-lived and travel in the Authorization header
// or the accessToken cookie. Refresh tokens are long-lived, signed
// with a separate secret, and only their SHA-256 hash is persisted.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a short-lived access JWT for the user. Claims:
// sub (user ID), exp, iat, jti.
func NewAccessToken(secret string, userID uint64, ttlMin int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken signs a long-lived refresh JWT. The raw string goes
// back to the client; callers persist only HashToken of it.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	exp := time.Now().UTC().Add(ttl)
	// The jti keeps two tokens minted in the same second from being
	// byte-identical; rotation depends on the new token differing from
	// the one it replaces.
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
		"jti": uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates an HS256 JWT and returns the user
// ID from its subject claim. Expired or foreign-signed tokens fail.
func VerifyToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || id == 0 {
			return 0, ErrInvalidToken
		}
		return id, nil
	case float64:
		return uint64(sub), nil
	}
	return 0, ErrInvalidToken
}

// HashToken returns the SHA-256 hex digest of a raw token. The
// database stores only this digest, so a leaked table cannot be
// replayed as live refresh tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
