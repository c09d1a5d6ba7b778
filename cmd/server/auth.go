package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
)

const (
	sessionCookieName = "ecopouch_session"
	sessionTTL        = 12 * time.Hour
)

type authService struct {
	db            *sql.DB
	sessionSecret []byte
	now           func() time.Time
}

func newAuthService(db *sql.DB, sessionSecret string) *authService {
	return &authService{db: db, sessionSecret: []byte(sessionSecret), now: time.Now}
}

func (a *authService) validateCredentials(ctx context.Context, email, password string) (bool, error) {
	var passwordHash string
	err := a.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user credentials: %w", err)
	}

	ok, err := argon2id.ComparePasswordAndHash(password, passwordHash)
	if err != nil {
		return false, fmt.Errorf("compare password hash: %w", err)
	}
	return ok, nil
}

// Session values are base64(email|expiry-unix) "." hex(hmac).
func (a *authService) createSessionValue(email string) string {
	expires := a.now().Add(sessionTTL).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(email + "|" + strconv.FormatInt(expires, 10)))
	return payload + "." + a.sign(payload)
}

func (a *authService) verifySessionValue(value string) (string, bool) {
	if len(a.sessionSecret) == 0 {
		return "", false
	}
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	expected, _ := hex.DecodeString(a.sign(payload))
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	email, rawExpiry, ok := strings.Cut(string(decoded), "|")
	if !ok || email == "" {
		return "", false
	}
	expiry, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil || a.now().Unix() >= expiry {
		return "", false
	}
	return email, true
}

func (a *authService) sign(payload string) string {
	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *authService) setSessionCookie(w http.ResponseWriter, email string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.createSessionValue(email),
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type adminEmailKey struct{}

// requireAdmin rejects requests without a valid session cookie.
func (a *authService) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		email, ok := a.verifySessionValue(cookie.Value)
		if !ok {
			a.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "unauthorized", "session expired or invalid", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminEmailKey{}, email)))
	})
}

func adminEmail(ctx context.Context) string {
	email, _ := ctx.Value(adminEmailKey{}).(string)
	return email
}
