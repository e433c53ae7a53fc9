package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	domainauth "stayflow/internal/domain/auth"
	domainuser "stayflow/internal/domain/user"
	"stayflow/internal/infra/security"
	"stayflow/internal/infra/storage/memory"
)

func newService() *Service {
	return &Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	reg, err := svc.Register(ctx, RegisterParams{
		Email:    "  Host@Example.COM ",
		Name:     "Amira",
		Password: "long enough",
		AsOwner:  true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.User.Email != "host@example.com" {
		t.Errorf("email %q, want normalized host@example.com", reg.User.Email)
	}
	if !reg.User.HasRole(domainuser.RoleOwner) {
		t.Errorf("owner role missing: %v", reg.User.Roles)
	}
	if reg.Token == "" {
		t.Fatal("registration must issue a session token")
	}

	login, err := svc.Login(ctx, LoginParams{Email: "host@example.com", Password: "long enough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login resolved %s, want %s", login.User.ID, reg.User.ID)
	}
	if login.Token == reg.Token {
		t.Error("each login must issue a fresh token")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "host@example.com",
		Name:     "Amira",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	params := RegisterParams{Email: "host@example.com", Name: "Amira", Password: "long enough"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Errorf("got %v, want ErrEmailAlreadyUsed", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	if _, err := svc.Register(ctx, RegisterParams{Email: "host@example.com", Name: "Amira", Password: "long enough"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, LoginParams{Email: "host@example.com", Password: "wrong password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}

	// Unknown accounts look exactly like a bad password.
	_, err = svc.Login(ctx, LoginParams{Email: "ghost@example.com", Password: "long enough"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestResolveTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	reg, err := svc.Register(ctx, RegisterParams{Email: "host@example.com", Name: "Amira", Password: "long enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resolved, err := svc.ResolveToken(ctx, reg.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.User.ID != reg.User.ID {
		t.Errorf("resolved %s, want %s", resolved.User.ID, reg.User.ID)
	}

	if err := svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ResolveToken(ctx, reg.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Errorf("after logout: got %v, want ErrSessionNotFound", err)
	}
}
