// Package auth registers users, checks passwords and issues the signed
// session tokens carried in the "token" cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
	"github.com/ayushbhandari/event-tickets/internal/events"
	"github.com/ayushbhandari/event-tickets/internal/validate"
)

var (
	ErrUserNotFound    = apperr.New(apperr.ErrNotFound, "User not found")
	ErrInvalidPassword = apperr.New(apperr.ErrUnauthorized, "Invalid password")
	ErrInvalidToken    = apperr.New(apperr.ErrUnauthorized, "Invalid token")
	ErrPasswordTooLong = apperr.New(apperr.ErrValidation, "password exceeds 72 bytes")
	ErrMissingSecret   = errors.New("auth: signing secret is required")
)

// UserStore is the credential store the service reads and writes.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*events.User, error)
	GetUserByEmail(ctx context.Context, email string) (*events.User, error)
	GetUserByID(ctx context.Context, id string) (*events.User, error)
}

// Claims is the identity embedded in a session token. Tokens carry no
// expiry; a session ends only when the client drops the cookie.
type Claims struct {
	Email string `json:"email"`
	ID    string `json:"id"`
	jwt.RegisteredClaims
}

type Service struct {
	users    UserStore
	secret   []byte
	hashCost int
	now      func() time.Time
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func WithHashCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

// WithClock overrides the time source used for the iat claim.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(users UserStore, secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	s := &Service{
		users:    users,
		secret:   []byte(secret),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required"`
}

// maxPasswordBytes is the most bcrypt hashes; longer input is rejected, not
// truncated.
const maxPasswordBytes = 72

// Register hashes the password and stores a new user. A taken email is a
// validation error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*events.User, error) {
	if err := validate.Struct(ctx, in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateUser(ctx, in.Name, in.Email, string(hash))
}

// Login checks the password and returns a signed token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *events.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidPassword
	}

	token, err := s.Sign(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Sign issues an HS256 token carrying the user's email and id.
func (s *Service) Sign(user *events.User) (string, error) {
	claims := Claims{
		Email: user.Email,
		ID:    user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature and returns the embedded claims. Any failure
// is reported as ErrInvalidToken.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Profile resolves the user behind a session token. A missing or invalid
// token, or one naming an unknown user, is "no session": (nil, nil).
func (s *Service) Profile(ctx context.Context, token string) (*events.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.Verify(token)
	if err != nil {
		return nil, nil
	}
	return s.users.GetUserByID(ctx, claims.ID)
}
