package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/jwt"
	"libraryhub/internal/pkg/password"
	"libraryhub/internal/pkg/validation"

	"gorm.io/gorm"
)

// AuthService handles signup, login and session verification
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// SignupInput represents signup input
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=100" msg:"Invalid email address" msg_max:"Email must be at most 100 characters"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	UserID uint   `json:"userId"`
	Token  string `json:"token"`
}

// Signup stores a new credential with a bcrypt password hash
func (s *AuthService) Signup(ctx context.Context, input *SignupInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, domain.ErrMissingCredentials
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if password.TooLong(input.Password) {
		return nil, domain.NewValidationError("password", "Password must be at most 72 bytes")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.StoreError("check user email", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, domain.StoreError("hash password", err)
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, domain.StoreError("create user", err)
	}

	log.Printf("✅ User signed up: %s", user.Email)
	return user, nil
}

// Login verifies credentials and issues a session token.
// Unknown email, missing hash and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password.Verify(input.Password, "")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.StoreError("get user", err)
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateSessionToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.TokenTTL)
	if err != nil {
		if errors.Is(err, jwt.ErrNoSecret) {
			log.Println("❌ Login rejected: SECRET_KEY is not configured")
			return nil, domain.ErrSecretKeyMissing
		}
		return nil, domain.StoreError("sign session token", err)
	}

	log.Printf("🔑 User logged in: #%d", user.ID)
	return &LoginResult{UserID: user.ID, Token: token}, nil
}

// VerifyToken checks a session token's signature and expiry
func (s *AuthService) VerifyToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateSessionToken(token, s.cfg.JWT.Secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrNoSecret):
			return nil, domain.ErrSecretKeyMissing
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	return claims, nil
}
