package interfaces

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("email already registered")
)

// Account 身份提供方中的账号
type Account struct {
	ID          string
	Email       string
	DisplayName string
}

// IdentityProvider 外部身份提供方（Firebase Auth 或本地实现）
type IdentityProvider interface {
	GetName() string
	CreateAccount(ctx context.Context, email, password, displayName string) (accountID string, err error)
	VerifyCredentials(ctx context.Context, email, password string) (accountID string, err error)
	ResolveByEmail(ctx context.Context, email string) (*Account, error)
	// DeleteAccount 注册失败时的补偿删除
	DeleteAccount(ctx context.Context, accountID string) error
}
