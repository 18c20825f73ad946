// Package local 自托管身份提供方：账号保存在文档存储的 identity_accounts 集合，密码用 bcrypt 哈希
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"PenaltyHub/internal/adapter"
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const Name = "local"

func init() {
	adapter.Register(Name, New)
}

type account struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id" validate:"required"`
	Email         string    `json:"email" validate:"required"`
	PasswordHash  string    `json:"password_hash" validate:"required"`
	DisplayName   string    `json:"display_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// Provider 本地身份提供方
type Provider struct {
	store  interfaces.DocumentStore
	cost   int
	logger *logrus.Logger
}

// New 创建本地身份提供方
func New(cfg *config.IdentityConfig, store interfaces.DocumentStore, logger *logrus.Logger) (interfaces.IdentityProvider, error) {
	if store == nil {
		return nil, errors.New("local 身份提供方需要文档存储")
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Provider{store: store, cost: cost, logger: logger}, nil
}

func (p *Provider) GetName() string { return Name }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) findByEmail(ctx context.Context, email string) (*account, error) {
	filters := []interfaces.Filter{interfaces.Eq("email", normalizeEmail(email))}
	for doc, err := range p.store.Query(ctx, interfaces.CollectionIdentityAccounts, filters, 1) {
		if err != nil {
			return nil, err
		}
		var a account
		if err := repository.Decode(doc, &a); err != nil {
			return nil, err
		}
		return &a, nil
	}
	return nil, interfaces.ErrAccountNotFound
}

// CreateAccount 邮箱唯一性同样是先查后写
func (p *Provider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	if _, err := p.findByEmail(ctx, email); err == nil {
		return "", interfaces.ErrEmailExists
	} else if !errors.Is(err, interfaces.ErrAccountNotFound) {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("密码哈希失败: %w", err)
	}
	a := &account{
		SchemaVersion: 1,
		ID:            uuid.NewString(),
		Email:         normalizeEmail(email),
		PasswordHash:  string(hash),
		DisplayName:   displayName,
		CreatedAt:     time.Now().UTC(),
	}
	doc, err := repository.Encode(a)
	if err != nil {
		return "", err
	}
	if err := p.store.Set(ctx, interfaces.CollectionIdentityAccounts, a.ID, doc); err != nil {
		return "", err
	}
	p.logger.WithField("account_id", a.ID).Debug("local 账号已创建")
	return a.ID, nil
}

func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	a, err := p.findByEmail(ctx, email)
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		return "", interfaces.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", interfaces.ErrInvalidCredentials
	}
	return a.ID, nil
}

func (p *Provider) ResolveByEmail(ctx context.Context, email string) (*interfaces.Account, error) {
	a, err := p.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &interfaces.Account{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName}, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, accountID string) error {
	return p.store.Delete(ctx, interfaces.CollectionIdentityAccounts, accountID)
}
