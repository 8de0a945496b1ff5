package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
}

// AuthService handles password checks, JWT issuance and the single-device
// login guard for students.
type AuthService struct {
	cfg   *config.Config
	users UserStore
	rdb   *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users UserStore, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, users: users, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies credentials and returns a signed token plus the user.
// Students are limited to one active login at a time: a second login is
// rejected until the first token expires or is logged out.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	jti := uuid.New().String()

	if user.Role == model.RoleStudent && s.rdb != nil {
		loginKey := config.CacheKey.UserLoginKey(user.ID)
		existing, err := s.rdb.Get(ctx, loginKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", nil, fmt.Errorf("check login session: %w", err)
		}
		if existing != "" {
			return "", nil, ErrSessionAlreadyActive
		}
		if err := s.rdb.Set(ctx, loginKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
			return "", nil, fmt.Errorf("store login session: %w", err)
		}
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, user, nil
}

// Logout releases a student's single-device login slot.
func (s *AuthService) Logout(ctx context.Context, userID int) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, config.CacheKey.UserLoginKey(userID)).Err()
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// CheckActiveLogin verifies that a student token still owns the login
// slot. Non-student roles always pass.
func (s *AuthService) CheckActiveLogin(ctx context.Context, claims *Claims) error {
	if claims.Role != model.RoleStudent || s.rdb == nil {
		return nil
	}
	current, err := s.rdb.Get(ctx, config.CacheKey.UserLoginKey(claims.UserID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("login session expired")
		}
		return fmt.Errorf("check login session: %w", err)
	}
	if current != claims.ID {
		return errors.New("login session superseded")
	}
	return nil
}

// GetProfile returns the authenticated user's profile.
func (s *AuthService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
