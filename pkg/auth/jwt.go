package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, badly signed and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

var errMissingSecret = errors.New("signing secret is empty")

// Identity is the set of claims both token kinds carry.
type Identity struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Claims represents JWT claims for access and refresh tokens
type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// Issuer signs access tokens and refresh tokens with distinct secrets.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer returns an Issuer. A zero refreshTTL issues refresh tokens
// without an exp claim.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock overrides the time source used for iat and exp.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueAccess creates a short-lived access token
func (i *Issuer) IssueAccess(id Identity) (string, error) {
	now := i.now()
	claims := &Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return sign(claims, i.accessSecret)
}

// IssueRefresh creates a refresh token. Every token gets its own jti so two
// logins in the same second still produce different strings.
func (i *Issuer) IssueRefresh(id Identity) (string, error) {
	now := i.now()
	claims := &Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.refreshTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.refreshTTL))
	}
	return sign(claims, i.refreshSecret)
}

func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return Verify(token, i.accessSecret)
}

func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return Verify(token, i.refreshSecret)
}

// Verify checks signature, algorithm and expiry. Every failure maps to
// ErrInvalidToken.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func sign(claims *Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errMissingSecret
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
