package model

import (
	"fmt"
	"time"
)

// MatchStatus 比赛状态：scheduled → live → finished
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
)

// Valid 是否为已知状态
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchLive, MatchFinished:
		return true
	}
	return false
}

// CanTransitionTo 严格模式下的状态机：只能前进一步或保持不变
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case MatchScheduled:
		return next == MatchLive
	case MatchLive:
		return next == MatchFinished
	}
	return false
}

// Match 对应 matches 集合，match_id 由存储生成
type Match struct {
	SchemaVersion int         `json:"schema_version" validate:"gte=0"`
	MatchID       string      `json:"match_id" validate:"required"`
	HomeTeam      string      `json:"home_team" validate:"required"`
	AwayTeam      string      `json:"away_team" validate:"required"`
	StartTime     *time.Time  `json:"start_time"`
	EndTime       *time.Time  `json:"end_time"` // 仅 finished 时有值
	Status        MatchStatus `json:"status" validate:"required,oneof=scheduled live finished"`
	HomeScore     int         `json:"home_score" validate:"gte=0"`
	AwayScore     int         `json:"away_score" validate:"gte=0"`
	Players       []string    `json:"players"` // uid 列表
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Check end_time 只能出现在已结束的比赛上
func (m *Match) Check() error {
	if m.EndTime != nil && m.Status != MatchFinished {
		return fmt.Errorf("end_time set on %s match", m.Status)
	}
	return nil
}

// MatchEvent 比赛事件（进球、红黄牌等），字段不固定
type MatchEvent map[string]interface{}

// MatchStats 对应 match_stats 集合，与 Match 一对一。events 只追加
type MatchStats struct {
	SchemaVersion  int          `json:"schema_version" validate:"gte=0"`
	MatchID        string       `json:"match_id" validate:"required"`
	Events         []MatchEvent `json:"events"`
	PossessionHome *float64     `json:"possession_home" validate:"omitempty,gte=0,lte=100"`
	PossessionAway *float64     `json:"possession_away" validate:"omitempty,gte=0,lte=100"`
	ShotsHome      *int         `json:"shots_home" validate:"omitempty,gte=0"`
	ShotsAway      *int         `json:"shots_away" validate:"omitempty,gte=0"`
	CornersHome    *int         `json:"corners_home" validate:"omitempty,gte=0"`
	CornersAway    *int         `json:"corners_away" validate:"omitempty,gte=0"`
}

// NewMatchStats 创建比赛时附带的空统计
func NewMatchStats(matchID string) *MatchStats {
	return &MatchStats{SchemaVersion: CurrentSchemaVersion, MatchID: matchID, Events: []MatchEvent{}}
}

// Check 双方控球率同时存在时之和不能超过 100
func (s *MatchStats) Check() error {
	if s.PossessionHome != nil && s.PossessionAway != nil && *s.PossessionHome+*s.PossessionAway > 100 {
		return fmt.Errorf("possession %.1f + %.1f exceeds 100", *s.PossessionHome, *s.PossessionAway)
	}
	return nil
}
