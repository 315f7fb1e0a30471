package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-order-service/config"
	"food-order-service/internal/models"
	"food-order-service/internal/store"
	"food-order-service/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the persistence surface AuthService needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
}

// Claims is the JWT payload. The staff flag travels in the token so the
// middleware can gate staff routes without a user lookup per request.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// AuthService handles registration and login.
type AuthService struct {
	users  UserRepository
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:  users,
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// RegisterRequest represents a registration payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new non-staff account. When no username is given it
// defaults to the part of the email before the @.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, Validationf("a valid email is required")
	}
	if req.Password == "" {
		return nil, Validationf("password is required")
	}

	username := req.Username
	if username == "" {
		username = strings.SplitN(req.Email, "@", 2)[0]
	}

	exists, err := s.users.UserExists(ctx, username, req.Email)
	if err != nil {
		return nil, Unexpectedf(err, "failed to check existing users")
	}
	if exists {
		return nil, Validationf("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, Unexpectedf(err, "failed to hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsStaff:      false,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, Unexpectedf(err, "failed to create user")
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, Unauthorizedf("invalid username or password")
		}
		return "", nil, Unexpectedf(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, Unauthorizedf("invalid username or password")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, Unexpectedf(err, "failed to issue token")
	}

	return token, user, nil
}

// IssueToken signs an HS256 token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.TokenTTLMinutes) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, Unauthorizedf("invalid or expired token")
	}
	return claims, nil
}
