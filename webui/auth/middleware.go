package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Middleware gates the web UI behind a single shared password. Successful
// logins receive a random token cookie; tokens live in memory and die with
// the process.
type Middleware struct {
	mu           sync.RWMutex
	tokens       map[string]bool
	passwordHash string
	cookieCfg    CookieConfig
	logger       *zap.Logger
}

// NewMiddleware creates the password gate. The password is hashed
// immediately; the plaintext is not retained.
func NewMiddleware(password string, cookieCfg CookieConfig, logger *zap.Logger) (*Middleware, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Middleware{
		tokens:       make(map[string]bool),
		passwordHash: hash,
		cookieCfg:    cookieCfg,
		logger:       logger,
	}, nil
}

// Middleware wraps a handler, rejecting requests without a valid token.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := TokenFromRequest(r)
		if err != nil || !m.validToken(token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":  "authentication required",
				"action": "Log in via POST /api/login",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MiddlewareFunc wraps an http.HandlerFunc with the same check.
func (m *Middleware) MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc {
	return m.Middleware(next).ServeHTTP
}

// LoginHandler handles POST /api/login with a JSON password payload.
func (m *Middleware) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := CheckPassword(payload.Password, m.passwordHash); err != nil {
			m.logger.Warn("login rejected", zap.String("remote", r.RemoteAddr))
			http.Error(w, "invalid password", http.StatusUnauthorized)
			return
		}

		token, err := newToken()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		m.mu.Lock()
		m.tokens[token] = true
		m.mu.Unlock()

		cookie, err := NewAuthCookie(token, m.cookieCfg)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, cookie)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// LogoutHandler invalidates the caller's token and clears the cookie.
func (m *Middleware) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, err := TokenFromRequest(r); err == nil {
			m.mu.Lock()
			delete(m.tokens, token)
			m.mu.Unlock()
		}
		http.SetCookie(w, ClearAuthCookie())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (m *Middleware) validToken(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[token]
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(buf), nil
}
