// Package session manages the signed-in identity. A session is an HS256
// token persisted in the data directory.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FileName is the session token file inside the data directory.
const FileName = "session.jwt"

const fileMode = 0o600

// ErrNoSession is returned when nobody is signed in, or the stored token is
// expired or fails verification.
var ErrNoSession = errors.New("not logged in")

// Identity is the current user.
type Identity struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserID derives the stable user ID for an email address.
func UserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

type claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens stored under dir.
type Manager struct {
	dir    string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. ttl is the lifetime of issued tokens.
func NewManager(dir string, secret []byte, ttl time.Duration) *Manager {
	return &Manager{dir: dir, secret: secret, ttl: ttl, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) path() string { return filepath.Join(m.dir, FileName) }

// Login signs a token for name and email and persists it.
func (m *Manager) Login(name, email string) (Identity, error) {
	if len(m.secret) == 0 {
		return Identity{}, errors.New("session secret is not configured")
	}
	now := m.now()
	id := Identity{
		UserID:    UserID(email),
		Name:      name,
		Email:     email,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Identity{}, fmt.Errorf("signing session token: %w", err)
	}
	if err := os.WriteFile(m.path(), []byte(signed+"\n"), fileMode); err != nil {
		return Identity{}, fmt.Errorf("writing session: %w", err)
	}
	return id, nil
}

// Logout removes the persisted token. Logging out without a session is not an error.
func (m *Manager) Logout() error {
	if err := os.Remove(m.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Current verifies the persisted token and returns its identity.
func (m *Manager) Current() (Identity, error) {
	data, err := os.ReadFile(m.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, ErrNoSession
		}
		return Identity{}, fmt.Errorf("reading session: %w", err)
	}
	return m.Verify(strings.TrimSpace(string(data)))
}

// Verify parses a signed token. Any verification failure, expiry
// included, yields ErrNoSession wrapping the cause.
func (m *Manager) Verify(tokenString string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if c.Email == "" || c.Subject != UserID(c.Email) {
		return Identity{}, fmt.Errorf("%w: token subject does not match email", ErrNoSession)
	}
	id := Identity{UserID: c.Subject, Name: c.Name, Email: c.Email}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
