// Package auth issues and checks bearer tokens for staff endpoints.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const RoleEmployee = "employee"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("staff login is not configured")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
)

type Config struct {
	StaffUsername     string
	StaffPasswordHash string
	Secret            string
	Issuer            string
	TokenTTL          time.Duration
}

type Claims struct {
	Subject string
	Role    string
}

type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
}

type staffClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "smartqueue"
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

// Authenticate checks a staff login against the configured bcrypt hash.
func (m *Manager) Authenticate(username, password string) error {
	if m.cfg.StaffUsername == "" || m.cfg.StaffPasswordHash == "" {
		return ErrLoginDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.cfg.StaffUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(m.cfg.StaffPasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (m *Manager) Issue(subject, role string) (Token, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.TokenTTL)

	claims := staffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

func (m *Manager) Validate(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&staffClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*staffClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return Claims{Subject: claims.Subject, Role: claims.Role}, nil
}

// HashPassword is used at startup when only a plaintext password is configured.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RandomSecret returns a per-process signing secret; tokens do not survive a restart.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
