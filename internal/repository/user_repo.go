package repository

import (
	"context"
	"fmt"

	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"
)

// UserRepository users / user_stats 集合的类型化访问
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, uid string, patch interfaces.Document) error
	// DeleteUser 仅用于注册失败时的补偿，正常流程只做状态迁移
	DeleteUser(ctx context.Context, uid string) error
	// FindByNicknameTag 按 (nickname, tag) 精确查找，不存在返回 ErrDocumentNotFound
	FindByNicknameTag(ctx context.Context, nickname, tag string) (*model.User, error)
	NicknameTagExists(ctx context.Context, nickname, tag string) (bool, error)
	GetStats(ctx context.Context, uid string) (*model.UserStats, error)
	SaveStats(ctx context.Context, stats *model.UserStats) error
}

type userRepository struct {
	store interfaces.DocumentStore
}

// NewUserRepository 创建用户仓储
func NewUserRepository(store interfaces.DocumentStore) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetUser(ctx context.Context, uid string) (*model.User, error) {
	doc, err := r.store.Get(ctx, interfaces.CollectionUsers, uid)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := Decode(doc, &u); err != nil {
		return nil, fmt.Errorf("users/%s: %w", uid, err)
	}
	return &u, nil
}

func (r *userRepository) SaveUser(ctx context.Context, user *model.User) error {
	doc, err := Encode(user)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, interfaces.CollectionUsers, user.UID, doc)
}

func (r *userRepository) UpdateUser(ctx context.Context, uid string, patch interfaces.Document) error {
	return r.store.Update(ctx, interfaces.CollectionUsers, uid, patch)
}

func (r *userRepository) DeleteUser(ctx context.Context, uid string) error {
	return r.store.Delete(ctx, interfaces.CollectionUsers, uid)
}

func (r *userRepository) FindByNicknameTag(ctx context.Context, nickname, tag string) (*model.User, error) {
	filters := []interfaces.Filter{interfaces.Eq("nickname", nickname), interfaces.Eq("tag", tag)}
	for doc, err := range r.store.Query(ctx, interfaces.CollectionUsers, filters, 1) {
		if err != nil {
			return nil, err
		}
		var u model.User
		if err := Decode(doc, &u); err != nil {
			return nil, fmt.Errorf("users(%s#%s): %w", nickname, tag, err)
		}
		return &u, nil
	}
	return nil, interfaces.ErrDocumentNotFound
}

// NicknameTagExists 只判断是否存在，不解码文档
func (r *userRepository) NicknameTagExists(ctx context.Context, nickname, tag string) (bool, error) {
	filters := []interfaces.Filter{interfaces.Eq("nickname", nickname), interfaces.Eq("tag", tag)}
	for _, err := range r.store.Query(ctx, interfaces.CollectionUsers, filters, 1) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (r *userRepository) GetStats(ctx context.Context, uid string) (*model.UserStats, error) {
	doc, err := r.store.Get(ctx, interfaces.CollectionUserStats, uid)
	if err != nil {
		return nil, err
	}
	var s model.UserStats
	if err := Decode(doc, &s); err != nil {
		return nil, fmt.Errorf("user_stats/%s: %w", uid, err)
	}
	return &s, nil
}

func (r *userRepository) SaveStats(ctx context.Context, stats *model.UserStats) error {
	doc, err := Encode(stats)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, interfaces.CollectionUserStats, stats.UID, doc)
}
