package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/repository"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
	"github.com/medtrack/medtrack-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 12

type Config struct {
	Secret      string
	ExpiryHours int
}

type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	secret   []byte
	expiry   time.Duration
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, cfg Config) *Service {
	expiry := time.Duration(cfg.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		userRepo: userRepo,
		hasher:   security.NewBcryptHasher(bcryptCost),
		secret:   []byte(cfg.Secret),
		expiry:   expiry,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.BadRequest("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Timezone:     timezone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateToken(user)
}

// ValidateToken parses and verifies a signed token, returning the embedded
// user identity.
func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user ID in token")
	}

	email, _ := claims["email"].(string)
	return &TokenClaims{UserID: userID, Email: email}, nil
}

func (s *Service) generateToken(user *model.User) (*model.TokenResponse, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.TokenResponse{
		Token:     signed,
		ExpiresIn: int64(s.expiry.Seconds()),
	}, nil
}
