package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/byTonho/logifix/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	// so login failures never reveal which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrInvalidToken       = errors.New("invalid token")
)

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Service struct {
	users   UserLookup
	limiter RateLimiter

	secret     []byte
	tokenTTL   time.Duration
	loginLimit int64
}

func New(users UserLookup, limiter RateLimiter, secret string, tokenTTL time.Duration, loginLimit int64) *Service {
	return &Service{
		users:      users,
		limiter:    limiter,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		loginLimit: loginLimit,
	}
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login checks the password and issues a signed token. Attempts are rate
// limited per email over a one minute window; a limiter outage fails open
// so Redis downtime never locks everyone out.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil && s.loginLimit > 0 {
		allowed, _, err := s.limiter.Allow(ctx, "login:"+email, s.loginLimit, time.Minute)
		if err == nil && !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().UTC().Add(s.tokenTTL)
	token, err := s.issueToken(u, expiresAt)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *Service) issueToken(u *models.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"name": u.Name,
		"role": u.Role,
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// ValidateToken parses and verifies a bearer token and returns the actor
// it identifies.
func (s *Service) ValidateToken(tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return models.Actor{}, ErrInvalidToken
	}
	return models.Actor{ID: sub, Name: name, Role: role}, nil
}
