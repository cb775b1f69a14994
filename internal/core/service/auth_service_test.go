package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub principal repository (shared across service tests)
// ---------------------------------------------------------------------------

type stubPrincipalRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Principal
}

func newStubPrincipalRepo() *stubPrincipalRepo {
	return &stubPrincipalRepo{byID: make(map[string]*domain.Principal)}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPrincipalRepo) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == p.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.seq++
	clone := clonePrincipal(p)
	clone.ID = fmt.Sprintf("p%03d", r.seq)
	r.byID[clone.ID] = clone
	return clonePrincipal(clone), nil
}

func (r *stubPrincipalRepo) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Email == email {
			return clonePrincipal(p), nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *stubPrincipalRepo) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	return clonePrincipal(p), nil
}

func (r *stubPrincipalRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]*domain.Principal)
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			result[id] = clonePrincipal(p)
		}
	}
	return result, nil
}

func (r *stubPrincipalRepo) AwardPoints(_ context.Context, id string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	p.Points += amount
	return nil
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func citizenInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		Name:     "Alice",
		Email:    email,
		Password: "pw12345678",
		Role:     domain.RoleCitizen,
	}
}

func authorityInput(email, department string) ports.RegisterInput {
	return ports.RegisterInput{
		Name:       "Bob",
		Email:      email,
		Password:   "pw12345678",
		Role:       domain.RoleAuthority,
		Department: department,
	}
}

func TestAuthService_Register_Citizen(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	p, err := svc.Register(context.Background(), citizenInput("alice@x.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected assigned id")
	}
	if p.Role != domain.RoleCitizen {
		t.Fatalf("unexpected role: %s", p.Role)
	}
	if p.PasswordHash == "pw12345678" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("pw12345678")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	cases := []struct {
		name  string
		input ports.RegisterInput
	}{
		{"empty name", ports.RegisterInput{Email: "a@x.com", Password: "pw12345678", Role: domain.RoleCitizen}},
		{"short password", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "short", Role: domain.RoleCitizen}},
		{"bad email", ports.RegisterInput{Name: "A", Email: "not-an-email", Password: "pw12345678", Role: domain.RoleCitizen}},
		{"bad role", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw12345678", Role: "admin"}},
		{"authority without department", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "pw12345678", Role: domain.RoleAuthority}},
	}

	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.input); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmailAcrossRoles(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	if _, err := svc.Register(context.Background(), citizenInput("shared@x.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	// An authority may not reuse a citizen's email.
	if _, err := svc.Register(context.Background(), authorityInput("shared@x.com", "Sanitation")); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	p, err := svc.Register(context.Background(), citizenInput("  Alice@X.COM "))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if p.Email != "alice@x.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}

	// A differently-cased duplicate still collides.
	if _, err := svc.Register(context.Background(), citizenInput("ALICE@x.com")); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail for case variant, got %v", err)
	}
}

func TestAuthService_Register_DropsDepartmentForCitizens(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	in := citizenInput("alice@x.com")
	in.Department = "Sneaky"
	p, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if p.Department != "" {
		t.Fatalf("citizen must not carry a department, got %q", p.Department)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	registered, err := svc.Register(context.Background(), authorityInput("bob@y.com", "Sanitation"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, p, err := svc.Login(context.Background(), "bob@y.com", "pw12345678")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected token, got empty")
	}
	if p.ID != registered.ID {
		t.Fatalf("unexpected principal: %+v", p)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %q, got %v", registered.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleAuthority {
		t.Fatalf("expected role %s, got %v", domain.RoleAuthority, claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatal("expected exp claim")
	}
}

func TestAuthService_Login_CaseInsensitiveEmail(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	if _, err := svc.Register(context.Background(), citizenInput("alice@x.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "Alice@X.com", "pw12345678"); err != nil {
		t.Fatalf("expected case-insensitive login, got %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	_, _ = svc.Register(context.Background(), citizenInput("alice@x.com"))
	if _, _, err := svc.Login(context.Background(), "alice@x.com", "wrongpass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := newStubPrincipalRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@x.com", "pw12345678"); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}
