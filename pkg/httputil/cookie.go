package httputil

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const RefreshCookieName = "refreshToken"

var (
	ErrNoRefreshCookie = errors.New("refresh cookie not found")
	ErrNoBearerToken   = errors.New("no bearer token in authorization header")
)

// CookiePolicy fixes the attributes used both to set and to clear the
// refresh cookie; browsers only delete a cookie when they match.
type CookiePolicy struct {
	Production bool
	// MaxAge of zero leaves the cookie a session cookie.
	MaxAge time.Duration
}

func (p CookiePolicy) base() *http.Cookie {
	cookie := &http.Cookie{
		Name:     RefreshCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Production,
	}

	// SameSite=None requires Secure=true, so use Lax for development
	if p.Production {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return cookie
}

func (p CookiePolicy) SetRefreshCookie(w http.ResponseWriter, token string) {
	cookie := p.base()
	cookie.Value = token
	if p.MaxAge > 0 {
		cookie.MaxAge = int(p.MaxAge.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (p CookiePolicy) ClearRefreshCookie(w http.ResponseWriter) {
	cookie := p.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// GetRefreshToken extracts the refresh token from its cookie
func GetRefreshToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoRefreshCookie
	}
	return cookie.Value, nil
}

// GetBearerToken reads "Authorization: Bearer <token>".
func GetBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoBearerToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoBearerToken
	}
	return token, nil
}
