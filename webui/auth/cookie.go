package auth

import (
	"errors"
	"net/http"
)

// AuthCookieName is the cookie carrying the authenticated marker.
const AuthCookieName = "foresight_auth"

// DefaultAuthMaxAge is the auth cookie lifetime in seconds (24 hours).
const DefaultAuthMaxAge = 24 * 60 * 60

// ErrNoCookie is returned when the auth cookie is absent.
var ErrNoCookie = errors.New("auth cookie not found")

// ErrEmptyToken is returned when building a cookie with an empty token.
var ErrEmptyToken = errors.New("auth token cannot be empty")

// CookieConfig holds the security settings for auth cookies.
type CookieConfig struct {
	// MaxAge is the cookie lifetime in seconds. -1 deletes the cookie.
	MaxAge int

	// Secure restricts the cookie to HTTPS. Off by default so local
	// development works.
	Secure bool
}

// DefaultCookieConfig returns secure defaults for local deployments.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		MaxAge: DefaultAuthMaxAge,
		Secure: false,
	}
}

// NewAuthCookie builds the HTTP-only auth cookie holding the given token.
func NewAuthCookie(token string, cfg CookieConfig) (*http.Cookie, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// ClearAuthCookie builds a cookie that deletes the auth cookie.
func ClearAuthCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// TokenFromRequest extracts the auth token from the request cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoCookie
	}
	return cookie.Value, nil
}
