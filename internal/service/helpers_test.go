package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"PenaltyHub/internal/adapter/local"
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// failingStore 对指定集合的 Set 返回错误，其余操作透传给内存存储
type failingStore struct {
	*repository.MemoryStore
	failSet string
}

var errStoreDown = errors.New("store down")

func (s *failingStore) Set(ctx context.Context, collection, key string, doc interfaces.Document) error {
	if collection == s.failSet {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, collection, key, doc)
}

// recordingProvider 记录 DeleteAccount 调用
type recordingProvider struct {
	interfaces.IdentityProvider
	deleted []string
}

func (p *recordingProvider) DeleteAccount(ctx context.Context, id string) error {
	p.deleted = append(p.deleted, id)
	return p.IdentityProvider.DeleteAccount(ctx, id)
}

type userFixture struct {
	svc      *UserService
	users    repository.UserRepository
	identity interfaces.IdentityProvider
	store    interfaces.DocumentStore
}

func newUserFixture(t *testing.T, store interfaces.DocumentStore) *userFixture {
	t.Helper()
	if store == nil {
		store = repository.NewMemoryStore()
	}
	logger := quietLogger()
	identity, err := local.New(&config.IdentityConfig{BcryptCost: bcrypt.MinCost}, store, logger)
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	users := repository.NewUserRepository(store)
	svc := NewUserService(UserServiceDeps{
		Users:    users,
		Identity: identity,
		Tags:     NewTagAllocator(users, 0, logger),
		Logger:   logger,
	})
	return &userFixture{svc: svc, users: users, identity: identity, store: store}
}

// fixedClock 每次调用前进一秒，便于断言 updated_at 是否变化
func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
