package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// Claims are the JWT claims issued by AuthService. Subject holds the user ID.
type Claims struct {
	jwt.StandardClaims
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", newError(ErrInvalidInput, ErrWeakPassword, "Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return "", newError(ErrInvalidInput, ErrWeakPassword, "Password must be at most %d bytes", maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new, non-admin user with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, false)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, isAdmin bool) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, newError(ErrConflict, ErrEmailTaken, "Email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hashed,
		IsAdmin:   isAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, ErrEmailTaken, "Email already registered")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Authenticate checks the credentials and returns the matching user.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrUnauthenticated, ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrUnauthenticated, ErrInvalidCredentials, "Invalid credentials")
	}
	return user, nil
}

// Login authenticates the user and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user.ID)
}

// IssueToken signs a token for userID that expires after the configured duration.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDurat).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken parses and validates a token and returns the user ID it was issued for.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return "", newError(ErrUnauthenticated, ErrInvalidToken, "Could not validate credentials")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", newError(ErrUnauthenticated, ErrInvalidToken, "Could not validate credentials")
	}
	return claims.Subject, nil
}

// Refresh exchanges a still valid token for a new one with a fresh expiry.
func (s *AuthService) Refresh(tokenString string) (string, error) {
	userID, err := s.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}
	return s.IssueToken(userID)
}

// CurrentUser resolves the user a verified token was issued for.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrUnauthenticated, ErrUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates an administrator with the given credentials, or promotes
// the existing user registered under email.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		if err := s.userRepo.UpdateAdminStatus(ctx, existing.ID, true); err != nil {
			return nil, fmt.Errorf("failed to promote %s: %w", existing.Email, err)
		}
		existing.IsAdmin = true
		log.Printf("Promoted existing user %s to admin", existing.Email)
		return existing, nil
	case errors.Is(err, repositories.ErrNotFound):
		user, err := s.createUser(ctx, in, true)
		if err != nil {
			return nil, err
		}
		log.Printf("Created admin user %s (ID: %s)", user.Email, user.ID)
		return user, nil
	default:
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}
}
