package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// LoginPath is where signed-out requests are sent.
	LoginPath = "/login"
	// HomePath is where a successful login lands. Everything under it
	// requires a session.
	HomePath = "/dashboard"
)

// Session is an authenticated login, carried in a signed cookie.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens and moves them in and
// out of the session cookie.
type Sessions struct {
	secret []byte
	cookie string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret, cookie string, ttl time.Duration) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		cookie: cookie,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Sessions) Issue(user *User) (*Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &Session{
		Token:     signed,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expires,
	}, nil
}

func (s *Sessions) Parse(raw string) (*Session, error) {
	var claims sessionClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parsing subject: %w", err)
	}

	return &Session{
		Token:     raw,
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Sessions) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return nil, err
	}

	if c.Value == "" {
		return nil, errors.New("empty session cookie")
	}

	return s.Parse(c.Value)
}

type ctxKey struct{}

func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// SessionFromContext returns the session attached by Require.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok
}

// Require lets only signed-in requests through. Browsers are sent to the
// login page; JSON clients get a 401.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.FromRequest(r)
		if err != nil {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			http.Redirect(w, r, LoginPath, http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}
