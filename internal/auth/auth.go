package auth

import (
	"context"
	"errors"
	"time"

	"pizzeria-be/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin  = "admin"
	AdminTTL   = 12 * time.Hour
	adminSub   = "admin"
	tokenIssue = "pizzeria-be"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator guards the back-office with a single bcrypt-hashed password
// and short lived HS256 tokens.
type Authenticator struct {
	secret       []byte
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthenticator(secret, passwordHash string) *Authenticator {
	return &Authenticator{
		secret:       []byte(secret),
		passwordHash: passwordHash,
		ttl:          AdminTTL,
		now:          time.Now,
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Login checks the password and returns a signed token and its expiry.
func (a *Authenticator) Login(ctx context.Context, password string) (string, time.Time, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "auth"),
		zap.String("method", "Login"),
	)

	if a.passwordHash == "" || len(a.secret) == 0 {
		log.Error("admin credentials not configured")
		return "", time.Time{}, ErrNotConfigured
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		log.Warn("admin login rejected")
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSub,
			Issuer:    tokenIssue,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		log.Error("failed to sign token", zap.Error(err))
		return "", time.Time{}, err
	}

	log.Info("admin logged in")
	return signed, expiresAt, nil
}

// ParseToken validates signature, expiry and role.
func (a *Authenticator) ParseToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" || len(a.secret) == 0 {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
