package local

import (
	"context"
	"errors"
	"io"
	"testing"

	"PenaltyHub/internal/adapter"
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func newTestProvider(t *testing.T) interfaces.IdentityProvider {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.IdentityConfig{Provider: Name, BcryptCost: bcrypt.MinCost}
	p, err := adapter.NewIdentityProvider(cfg, repository.NewMemoryStore(), logger)
	if err != nil {
		t.Fatalf("NewIdentityProvider: %v", err)
	}
	return p
}

func TestCreateAndVerify(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	id, err := p.CreateAccount(ctx, "Nico@Example.com", "secret1", "Nico")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	got, err := p.VerifyCredentials(ctx, "nico@example.com", "secret1")
	if err != nil || got != id {
		t.Fatalf("VerifyCredentials = %q, %v; want %q", got, err, id)
	}
	if _, err := p.VerifyCredentials(ctx, "nico@example.com", "wrong"); !errors.Is(err, interfaces.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := p.VerifyCredentials(ctx, "ghost@example.com", "secret1"); !errors.Is(err, interfaces.ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v", err)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	if _, err := p.CreateAccount(ctx, "a@example.com", "secret1", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreateAccount(ctx, "A@example.com", "other12", "B"); !errors.Is(err, interfaces.ErrEmailExists) {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}

func TestResolveAndDelete(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	id, _ := p.CreateAccount(ctx, "a@example.com", "secret1", "Alpha")

	acc, err := p.ResolveByEmail(ctx, "a@example.com")
	if err != nil || acc.ID != id || acc.DisplayName != "Alpha" {
		t.Fatalf("ResolveByEmail = %+v, %v", acc, err)
	}
	if err := p.DeleteAccount(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ResolveByEmail(ctx, "a@example.com"); !errors.Is(err, interfaces.ErrAccountNotFound) {
		t.Errorf("after delete: err = %v", err)
	}
}

func TestUnknownProvider(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	_, err := adapter.NewIdentityProvider(&config.IdentityConfig{Provider: "ldap"}, repository.NewMemoryStore(), logger)
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}
