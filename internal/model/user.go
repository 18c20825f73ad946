package model

import (
	"fmt"
	"time"
)

// CurrentSchemaVersion 当前写入文档的结构版本。缺省（0）表示旧版文档
const CurrentSchemaVersion = 1

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted" // 不做物理删除，只做状态迁移
)

// MatchResult 单场结果（从球员视角）
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// User 对应 users 集合。(nickname, tag) 全局唯一
type User struct {
	SchemaVersion int        `json:"schema_version" validate:"gte=0"`
	UID           string     `json:"uid" validate:"required"`
	Nickname      string     `json:"nickname" validate:"required"`
	Tag           string     `json:"tag" validate:"required,len=4,numeric"`
	Email         *string    `json:"email" validate:"omitempty,email"` // 昵称账号没有邮箱
	AvatarURL     *string    `json:"avatar_url"`
	FavoriteTeam  *string    `json:"favorite_team"`
	Status        UserStatus `json:"status" validate:"required,oneof=active suspended deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Handle 展示用的 nickname#tag
func (u *User) Handle() string {
	return u.Nickname + "#" + u.Tag
}

// UserStats 对应 user_stats 集合，与 User 一对一（key=uid）
type UserStats struct {
	SchemaVersion int        `json:"schema_version" validate:"gte=0"`
	UID           string     `json:"uid" validate:"required"`
	TotalMatches  int        `json:"total_matches" validate:"gte=0"`
	Wins          int        `json:"wins" validate:"gte=0"`
	Losses        int        `json:"losses" validate:"gte=0"`
	Draws         int        `json:"draws" validate:"gte=0"`
	GoalsScored   int        `json:"goals_scored" validate:"gte=0"`
	GoalsConceded int        `json:"goals_conceded" validate:"gte=0"`
	CleanSheets   int        `json:"clean_sheets" validate:"gte=0"`
	LastMatchAt   *time.Time `json:"last_match_at"`
}

// NewUserStats 注册时创建的全零统计
func NewUserStats(uid string) *UserStats {
	return &UserStats{SchemaVersion: CurrentSchemaVersion, UID: uid}
}

// Check total_matches == wins + losses + draws
func (s *UserStats) Check() error {
	if s.TotalMatches != s.Wins+s.Losses+s.Draws {
		return fmt.Errorf("total_matches %d != wins %d + losses %d + draws %d", s.TotalMatches, s.Wins, s.Losses, s.Draws)
	}
	return nil
}

// Apply 累加一场比赛结果
func (s *UserStats) Apply(goalsScored, goalsConceded int, result MatchResult, at time.Time) {
	s.TotalMatches++
	s.GoalsScored += goalsScored
	s.GoalsConceded += goalsConceded
	if goalsConceded == 0 {
		s.CleanSheets++
	}
	switch result {
	case ResultWin:
		s.Wins++
	case ResultLoss:
		s.Losses++
	case ResultDraw:
		s.Draws++
	}
	s.LastMatchAt = &at
}
