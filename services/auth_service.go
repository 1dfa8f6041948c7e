package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// AuthResult is a freshly issued token and the user it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// IAuthService defines registration, login and bearer-token resolution.
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// CreateAdmin creates an admin account without issuing a token.
	CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error)
}

type tokenClaims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// AuthService implements IAuthService with bcrypt hashes and HS256 tokens.
type AuthService struct {
	userRepo repository.IUserRepository
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(repo repository.IUserRepository, secret string, ttl time.Duration, log *zap.Logger) IAuthService {
	return &AuthService{userRepo: repo, secret: []byte(secret), ttl: ttl, log: log}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, in, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, models.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, apperrors.InvalidArgument("Username, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.InvalidArgument("Invalid email address")
	}

	taken, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, s.internal("register", err)
	}
	if taken {
		return nil, apperrors.Conflict("Email or username already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, s.internal("hash password", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		FullName: in.FullName,
		Phone:    in.Phone,
		Address:  in.Address,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Email or username already in use")
		}
		return nil, s.internal("register", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.InvalidArgument("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InvalidCredential("Invalid email or password")
	}
	if err != nil {
		return nil, s.internal("login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredential("Invalid email or password")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, s.internal("issue token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated("Access token required")
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperrors.InvalidCredential("Token expired")
	}
	if err != nil || claims.UserID == 0 {
		return nil, apperrors.InvalidCredential("Invalid token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InvalidCredential("User not found")
	}
	if err != nil {
		return nil, s.internal("authenticate", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) internal(op string, err error) error {
	s.log.Error(op+" failed", zap.Error(err))
	return apperrors.Internal(err)
}
