package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidName        = errors.New("name must be between 2 and 50 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

const minPasswordLength = 8

// Claims JWT 载荷
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users      UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(cfg *config.AuthConfig, users UserRepository) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cost,
		now:        time.Now,
	}
}

// Signup 创建账号并签发 token
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, *model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return "", nil, ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return "", nil, ErrWeakPassword
	}
	if n := len([]rune(name)); n < 2 || n > 50 {
		return "", nil, ErrInvalidName
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return "", nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ParseToken 校验签名与过期时间，返回用户 ID
func (s *AuthService) ParseToken(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Verify 解析 token 并加载用户
func (s *AuthService) Verify(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return s.User(ctx, userID)
}

func (s *AuthService) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
