package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewAuthCookie(t *testing.T) {
	cookie, err := NewAuthCookie("token-value", DefaultCookieConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookie.Name != AuthCookieName || cookie.Value != "token-value" {
		t.Errorf("unexpected cookie %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Error("auth cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Error("auth cookie must be SameSite=Strict")
	}
	if cookie.MaxAge != DefaultAuthMaxAge {
		t.Errorf("MaxAge = %d", cookie.MaxAge)
	}
}

func TestNewAuthCookieEmptyToken(t *testing.T) {
	if _, err := NewAuthCookie("", DefaultCookieConfig()); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("empty token returned %v", err)
	}
}

func TestClearAuthCookie(t *testing.T) {
	cookie := ClearAuthCookie()
	if cookie.MaxAge != -1 {
		t.Errorf("clearing cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Errorf("clearing cookie value = %q", cookie.Value)
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := TokenFromRequest(req); !errors.Is(err, ErrNoCookie) {
		t.Errorf("missing cookie returned %v", err)
	}

	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "abc"})
	token, err := TokenFromRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "abc" {
		t.Errorf("token = %q", token)
	}
}

func TestTokenFromRequestEmptyValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: ""})
	if _, err := TokenFromRequest(req); !errors.Is(err, ErrNoCookie) {
		t.Errorf("empty cookie returned %v", err)
	}
}
