package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicsync/civicsync-api/internal/api/metrics"
	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements registration and login. Tokens are stateless
// HS256 JWTs; the signing secret is process-wide configuration loaded
// once at startup.
type AuthService struct {
	principals ports.PrincipalRepository
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewAuthService(principals ports.PrincipalRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{principals: principals, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Principal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	email := NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrValidation)
	}

	department := strings.TrimSpace(in.Department)
	switch in.Role {
	case domain.RoleCitizen:
		department = ""
	case domain.RoleAuthority:
		if department == "" {
			return nil, fmt.Errorf("%w: department is required for authorities", domain.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrValidation, domain.RoleCitizen, domain.RoleAuthority)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.principals.Create(ctx, &domain.Principal{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   department,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(created.Role).Inc()
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Principal, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	principal, err := s.principals.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(principal)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, principal, nil
}

// generateToken issues the proof presented on protected calls. The role
// claim is resolved from the stored principal, never from request input.
func (s *AuthService) generateToken(p *domain.Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  p.ID,
		"role": p.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// NormalizeEmail lower-cases and trims an email so uniqueness and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
