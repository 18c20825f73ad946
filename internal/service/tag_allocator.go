package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"PenaltyHub/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultTagAttempts 随机生成标签的默认重试次数
const DefaultTagAttempts = 50

const tagSpace = 10000

var tagPattern = regexp.MustCompile(`^[0-9]{4}$`)

// FormatTag 4 位补零
func FormatTag(n int) string {
	return fmt.Sprintf("%04d", n)
}

// ValidTag 是否为 4 位数字
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// TagAllocator 为昵称分配唯一的 4 位标签。
// 存储没有组合唯一索引，采用先查后写：两个并发注册可能同时通过检查（已知风险，不加锁）
type TagAllocator struct {
	users       repository.UserRepository
	maxAttempts int
	intn        func(n int) int
	logger      *logrus.Logger
}

// NewTagAllocator 创建标签分配器，maxAttempts<=0 时使用默认值
func NewTagAllocator(users repository.UserRepository, maxAttempts int, logger *logrus.Logger) *TagAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultTagAttempts
	}
	return &TagAllocator{
		users:       users,
		maxAttempts: maxAttempts,
		intn:        rand.IntN,
		logger:      logger,
	}
}

// Allocate 随机挑选未被占用的标签
func (a *TagAllocator) Allocate(ctx context.Context, nickname string) (string, error) {
	if strings.TrimSpace(nickname) == "" {
		return "", validationErrorf("nickname is required")
	}
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		candidate := FormatTag(a.intn(tagSpace))
		exists, err := a.users.NicknameTagExists(ctx, nickname, candidate)
		if err != nil {
			return "", fmt.Errorf("检查标签 %s#%s 失败: %w", nickname, candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		a.logger.WithFields(logrus.Fields{
			"nickname": nickname,
			"tag":      candidate,
			"attempt":  attempt,
		}).Debug("标签冲突，重新生成")
	}
	a.logger.WithField("nickname", nickname).Warn("标签分配次数耗尽")
	return "", fmt.Errorf("%w: nickname %q after %d attempts", ErrAllocationExhausted, nickname, a.maxAttempts)
}

// Reserve 校验调用方指定的标签：格式正确且 (nickname, tag) 未被占用
func (a *TagAllocator) Reserve(ctx context.Context, nickname, tag string) error {
	if strings.TrimSpace(nickname) == "" {
		return validationErrorf("nickname is required")
	}
	if !ValidTag(tag) {
		return validationErrorf("tag %q must be 4 digits", tag)
	}
	exists, err := a.users.NicknameTagExists(ctx, nickname, tag)
	if err != nil {
		return fmt.Errorf("检查标签 %s#%s 失败: %w", nickname, tag, err)
	}
	if exists {
		return fmt.Errorf("%w: %s#%s", ErrTagAlreadyTaken, nickname, tag)
	}
	return nil
}
