package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"
	"PenaltyHub/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSyntheticDomain 昵称账号在身份提供方中的合成邮箱域名
const DefaultSyntheticDomain = "nickname.penaltyhub.invalid"

// 身份提供方没有显示名时的默认昵称
const fallbackNickname = "User"

// RegisterByEmailRequest 邮箱注册。tag 不传则自动分配
type RegisterByEmailRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Nickname string  `json:"nickname" binding:"required,max=32"`
	Tag      *string `json:"tag" binding:"omitempty,len=4,numeric"`
}

// RegisterByNicknameRequest 昵称注册，标签由调用方指定
type RegisterByNicknameRequest struct {
	Nickname string `json:"nickname" binding:"required,max=32"`
	Tag      string `json:"tag" binding:"required,len=4,numeric"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginByEmailRequest 邮箱登录
type LoginByEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginByNicknameRequest 昵称+标签登录
type LoginByNicknameRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Tag      string `json:"tag" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 只更新非空字段
type UpdateProfileRequest struct {
	AvatarURL    *string           `json:"avatar_url" binding:"omitempty,max=2048"`
	FavoriteTeam *string           `json:"favorite_team" binding:"omitempty,max=128"`
	Status       *model.UserStatus `json:"status" binding:"omitempty,oneof=active suspended deleted"`
}

// RecordResultRequest 一场比赛结束后给球员累加统计
type RecordResultRequest struct {
	GoalsScored   *int              `json:"goals_scored" binding:"required,gte=0"`
	GoalsConceded *int              `json:"goals_conceded" binding:"required,gte=0"`
	Result        model.MatchResult `json:"result" binding:"required,oneof=win loss draw"`
}

// UserServiceDeps UserService 依赖
type UserServiceDeps struct {
	Users           repository.UserRepository
	Identity        interfaces.IdentityProvider
	Tags            *TagAllocator
	Avatars         interfaces.AvatarStore // 可为 nil，则头像上传不可用
	AvatarMaxBytes  int64
	SyntheticDomain string
	Logger          *logrus.Logger
}

// UserService 用户目录：注册、登录、资料与统计
type UserService struct {
	users           repository.UserRepository
	identity        interfaces.IdentityProvider
	tags            *TagAllocator
	avatars         interfaces.AvatarStore
	avatarMaxBytes  int64
	syntheticDomain string
	logger          *logrus.Logger
	now             func() time.Time
}

// NewUserService 创建 UserService
func NewUserService(deps UserServiceDeps) *UserService {
	domain := deps.SyntheticDomain
	if domain == "" {
		domain = DefaultSyntheticDomain
	}
	return &UserService{
		users:           deps.Users,
		identity:        deps.Identity,
		tags:            deps.Tags,
		avatars:         deps.Avatars,
		avatarMaxBytes:  deps.AvatarMaxBytes,
		syntheticDomain: domain,
		logger:          deps.Logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SyntheticEmail 昵称账号在身份提供方中使用的登录名。昵称做 hex 编码，避免非法字符与大小写冲突
func SyntheticEmail(nickname, tag, domain string) string {
	return hex.EncodeToString([]byte(nickname)) + "." + tag + "@" + domain
}

func (s *UserService) newUser(uid, nickname, tag string, email *string) *model.User {
	now := s.now()
	return &model.User{
		SchemaVersion: model.CurrentSchemaVersion,
		UID:           uid,
		Nickname:      nickname,
		Tag:           tag,
		Email:         email,
		Status:        model.UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// createProfile 写入 User 与全零 UserStats。任一步失败都删除已写入的资料与刚创建的身份账号，
// 避免留下占用 nickname#tag 的孤儿数据
func (s *UserService) createProfile(ctx context.Context, user *model.User) error {
	err := s.users.SaveUser(ctx, user)
	if err == nil {
		if err = s.users.SaveStats(ctx, model.NewUserStats(user.UID)); err != nil {
			if delErr := s.users.DeleteUser(ctx, user.UID); delErr != nil {
				s.logger.WithError(delErr).WithField("uid", user.UID).Error("回滚用户资料失败")
			}
		}
	}
	if err == nil {
		return nil
	}
	log := s.logger.WithError(err).WithField("uid", user.UID)
	if delErr := s.identity.DeleteAccount(ctx, user.UID); delErr != nil {
		log.WithField("rollback_error", delErr.Error()).Error("写入用户资料失败，回滚身份账号也失败")
	} else {
		log.Warn("写入用户资料失败，已回滚身份账号")
	}
	return fmt.Errorf("写入用户资料失败: %w", err)
}

// RegisterByEmail 邮箱注册。昵称与标签先校验/分配，再创建身份账号
func (s *UserService) RegisterByEmail(ctx context.Context, req *RegisterByEmailRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return nil, validationErrorf("nickname is required")
	}

	var tag string
	if req.Tag != nil && *req.Tag != "" {
		tag = *req.Tag
		if err := s.tags.Reserve(ctx, nickname, tag); err != nil {
			return nil, err
		}
	} else {
		allocated, err := s.tags.Allocate(ctx, nickname)
		if err != nil {
			return nil, err
		}
		tag = allocated
	}

	uid, err := s.identity.CreateAccount(ctx, req.Email, req.Password, nickname)
	if err != nil {
		return nil, identityError(err)
	}

	email := req.Email
	user := s.newUser(uid, nickname, tag, &email)
	if err := s.createProfile(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"uid": uid, "handle": user.Handle()}).Info("邮箱注册成功")
	return user, nil
}

// RegisterByNickname 昵称注册，没有邮箱
func (s *UserService) RegisterByNickname(ctx context.Context, req *RegisterByNicknameRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	nickname := strings.TrimSpace(req.Nickname)
	if err := s.tags.Reserve(ctx, nickname, req.Tag); err != nil {
		return nil, err
	}

	handle := SyntheticEmail(nickname, req.Tag, s.syntheticDomain)
	uid, err := s.identity.CreateAccount(ctx, handle, req.Password, nickname)
	if err != nil {
		return nil, identityError(err)
	}

	user := s.newUser(uid, nickname, req.Tag, nil)
	if err := s.createProfile(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"uid": uid, "handle": user.Handle()}).Info("昵称注册成功")
	return user, nil
}

// LoginByEmail 邮箱登录。身份账号存在但没有资料文档时补建资料
func (s *UserService) LoginByEmail(ctx context.Context, req *LoginByEmailRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	uid, err := s.identity.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, identityError(err)
	}

	user, err := s.users.GetUser(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, interfaces.ErrDocumentNotFound) {
		return nil, err
	}
	return s.backfillProfile(ctx, uid, req.Email)
}

func (s *UserService) backfillProfile(ctx context.Context, uid, email string) (*model.User, error) {
	nickname := fallbackNickname
	acc, err := s.identity.ResolveByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).WithField("uid", uid).Warn("获取身份账号显示名失败，使用默认昵称")
	} else if name := strings.TrimSpace(acc.DisplayName); name != "" {
		nickname = name
	}

	tag, err := s.tags.Allocate(ctx, nickname)
	if err != nil {
		return nil, err
	}
	user := s.newUser(uid, nickname, tag, &email)
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("补建用户资料失败: %w", err)
	}
	if _, err := s.users.GetStats(ctx, uid); errors.Is(err, interfaces.ErrDocumentNotFound) {
		if err := s.users.SaveStats(ctx, model.NewUserStats(uid)); err != nil {
			return nil, fmt.Errorf("补建用户统计失败: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"uid": uid, "handle": user.Handle()}).Info("登录时补建用户资料")
	return user, nil
}

// LoginByNickname 昵称+标签登录。(nickname, tag) 不存在时直接返回 ErrNotFound，不调用身份提供方
func (s *UserService) LoginByNickname(ctx context.Context, req *LoginByNicknameRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	// 注册时昵称去掉了首尾空白，查询需一致
	nickname := strings.TrimSpace(req.Nickname)
	user, err := s.users.FindByNicknameTag(ctx, nickname, req.Tag)
	if err != nil {
		return nil, notFound(err, "user "+nickname+"#"+req.Tag)
	}

	// 邮箱注册的用户同样可以用昵称登录，密码校验走其邮箱账号
	login := SyntheticEmail(user.Nickname, user.Tag, s.syntheticDomain)
	if user.Email != nil && *user.Email != "" {
		login = *user.Email
	}
	uid, err := s.identity.VerifyCredentials(ctx, login, req.Password)
	if err != nil {
		return nil, identityError(err)
	}
	if uid != user.UID {
		return nil, fmt.Errorf("%w: account does not own %s", ErrInvalidCredentials, user.Handle())
	}
	return user, nil
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, notFound(err, "user "+uid)
	}
	return user, nil
}

// UpdateProfile 部分更新。没有任何字段时原样返回，不改 updated_at
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *UpdateProfileRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	patch := interfaces.Document{}
	if req.AvatarURL != nil {
		patch["avatar_url"] = *req.AvatarURL
	}
	if req.FavoriteTeam != nil {
		patch["favorite_team"] = *req.FavoriteTeam
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if len(patch) == 0 {
		return s.GetProfile(ctx, uid)
	}
	patch["updated_at"] = s.now()
	if err := s.users.UpdateUser(ctx, uid, patch); err != nil {
		return nil, notFound(err, "user "+uid)
	}
	return s.GetProfile(ctx, uid)
}

// GetStats 获取用户统计
func (s *UserService) GetStats(ctx context.Context, uid string) (*model.UserStats, error) {
	stats, err := s.users.GetStats(ctx, uid)
	if err != nil {
		return nil, notFound(err, "stats "+uid)
	}
	return stats, nil
}

// RecordMatchResult 读-改-写累加统计，缺失时从全零开始。并发写入时后写覆盖先写
func (s *UserService) RecordMatchResult(ctx context.Context, uid string, req *RecordResultRequest) (*model.UserStats, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	stats, err := s.users.GetStats(ctx, uid)
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		stats = model.NewUserStats(uid)
	} else if err != nil {
		return nil, err
	}
	stats.SchemaVersion = model.CurrentSchemaVersion
	stats.Apply(*req.GoalsScored, *req.GoalsConceded, req.Result, s.now())
	if err := s.users.SaveStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("保存用户统计失败: %w", err)
	}
	return stats, nil
}

// UploadAvatar 上传头像到对象存储并写回 avatar_url
func (s *UserService) UploadAvatar(ctx context.Context, uid, filename, contentType string, body io.Reader, size int64) (*model.User, error) {
	if s.avatars == nil {
		return nil, ErrAvatarDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationErrorf("avatar must be an image, got %q", contentType)
	}
	if s.avatarMaxBytes > 0 && size > s.avatarMaxBytes {
		return nil, validationErrorf("avatar is %d bytes, limit %d", size, s.avatarMaxBytes)
	}
	if _, err := s.GetProfile(ctx, uid); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", uid, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.avatars.Put(ctx, key, contentType, body, size)
	if err != nil {
		return nil, err
	}
	return s.UpdateProfile(ctx, uid, &UpdateProfileRequest{AvatarURL: &url})
}
