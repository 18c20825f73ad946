package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"
	"PenaltyHub/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultListLimit 未配置时列表返回的最大条数
const DefaultListLimit = 100

// CreateMatchRequest 创建比赛
type CreateMatchRequest struct {
	HomeTeam  string     `json:"home_team" binding:"required,max=128"`
	AwayTeam  string     `json:"away_team" binding:"required,max=128"`
	StartTime *time.Time `json:"start_time"`
	Players   []string   `json:"players" binding:"omitempty,dive,required"`
}

// UpdateScoreRequest 比分必填，状态与结束时间可选
type UpdateScoreRequest struct {
	HomeScore *int               `json:"home_score" binding:"required,gte=0"`
	AwayScore *int               `json:"away_score" binding:"required,gte=0"`
	Status    *model.MatchStatus `json:"status"`
	EndTime   *time.Time         `json:"end_time"`
}

// UpdateMatchStatsRequest 更新比赛聚合统计，只写非空字段
type UpdateMatchStatsRequest struct {
	PossessionHome *float64 `json:"possession_home" binding:"omitempty,gte=0,lte=100"`
	PossessionAway *float64 `json:"possession_away" binding:"omitempty,gte=0,lte=100"`
	ShotsHome      *int     `json:"shots_home" binding:"omitempty,gte=0"`
	ShotsAway      *int     `json:"shots_away" binding:"omitempty,gte=0"`
	CornersHome    *int     `json:"corners_home" binding:"omitempty,gte=0"`
	CornersAway    *int     `json:"corners_away" binding:"omitempty,gte=0"`
}

// MatchService 比赛登记：创建、比分与状态更新、事件与统计
type MatchService struct {
	matches           repository.MatchRepository
	strictTransitions bool
	listLimit         int
	logger            *logrus.Logger
	now               func() time.Time
}

// NewMatchService 创建 MatchService
func NewMatchService(matches repository.MatchRepository, cfg config.MatchConfig, logger *logrus.Logger) *MatchService {
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return &MatchService{
		matches:           matches,
		strictTransitions: cfg.StrictTransitions,
		listLimit:         limit,
		logger:            logger,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// CreateMatch 生成 match_id，先写空的 match_stats 再写 matches，
// 保证能读到比赛时统计文档一定存在
func (s *MatchService) CreateMatch(ctx context.Context, req *CreateMatchRequest) (*model.Match, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	home, away := strings.TrimSpace(req.HomeTeam), strings.TrimSpace(req.AwayTeam)
	if home == "" || away == "" {
		return nil, validationErrorf("home_team and away_team are required")
	}

	now := s.now()
	m := &model.Match{
		SchemaVersion: model.CurrentSchemaVersion,
		MatchID:       s.matches.NewMatchID(),
		HomeTeam:      home,
		AwayTeam:      away,
		StartTime:     req.StartTime,
		Status:        model.MatchScheduled,
		Players:       dedupe(req.Players),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.matches.SaveStats(ctx, model.NewMatchStats(m.MatchID)); err != nil {
		return nil, fmt.Errorf("创建比赛统计失败: %w", err)
	}
	if err := s.matches.SaveMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("创建比赛失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"match_id": m.MatchID, "home": home, "away": away}).Info("比赛已创建")
	return m, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GetMatch 获取比赛
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	m, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err, "match "+matchID)
	}
	return m, nil
}

// GetMatchStats 获取比赛统计
func (s *MatchService) GetMatchStats(ctx context.Context, matchID string) (*model.MatchStats, error) {
	st, err := s.matches.GetStats(ctx, matchID)
	if err != nil {
		return nil, notFound(err, "match stats "+matchID)
	}
	return st, nil
}

// ListMatches 惰性列表，每次遍历都会重新查询。limit<=0 或超过上限时使用配置上限
func (s *MatchService) ListMatches(ctx context.Context, status model.MatchStatus, limit int) (iter.Seq2[*model.Match, error], error) {
	if status != "" && !status.Valid() {
		return nil, validationErrorf("unknown match status %q", status)
	}
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	return s.matches.ListMatches(ctx, status, limit), nil
}

// UpdateScoreAndStatus 总是写比分与 updated_at；status/end_time 只在传入时写。
// end_time 只允许出现在 finished 比赛上，离开 finished 时清空
func (s *MatchService) UpdateScoreAndStatus(ctx context.Context, matchID string, req *UpdateScoreRequest) (*model.Match, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	next := current.Status
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, validationErrorf("unknown match status %q", *req.Status)
		}
		if s.strictTransitions && !current.Status.CanTransitionTo(*req.Status) {
			return nil, validationErrorf("match %s cannot move from %s to %s", matchID, current.Status, *req.Status)
		}
		next = *req.Status
	}
	if req.EndTime != nil && next != model.MatchFinished {
		return nil, validationErrorf("end_time requires status %s, match would be %s", model.MatchFinished, next)
	}

	patch := interfaces.Document{
		"home_score": *req.HomeScore,
		"away_score": *req.AwayScore,
		"updated_at": s.now(),
	}
	if req.Status != nil {
		patch["status"] = string(next)
		if next != model.MatchFinished && current.EndTime != nil {
			patch["end_time"] = nil
		}
	}
	if req.EndTime != nil {
		patch["end_time"] = req.EndTime.UTC()
	}
	if err := s.matches.UpdateMatch(ctx, matchID, patch); err != nil {
		return nil, notFound(err, "match "+matchID)
	}

	if next != current.Status {
		s.logger.WithFields(logrus.Fields{
			"match_id": matchID,
			"from":     current.Status,
			"to":       next,
		}).Info("比赛状态变更")
	}
	return s.GetMatch(ctx, matchID)
}

// AppendMatchEvent 向 events 末尾追加一个事件，已有事件不修改
func (s *MatchService) AppendMatchEvent(ctx context.Context, matchID string, event model.MatchEvent) (*model.MatchStats, error) {
	if len(event) == 0 {
		return nil, validationErrorf("event must not be empty")
	}
	st, err := s.GetMatchStats(ctx, matchID)
	if err != nil {
		return nil, err
	}
	events := append(st.Events, event)
	if err := s.matches.UpdateStats(ctx, matchID, interfaces.Document{"events": events}); err != nil {
		return nil, notFound(err, "match stats "+matchID)
	}
	return s.GetMatchStats(ctx, matchID)
}

// UpdateMatchStats 更新聚合统计；合并后的控球率之和不能超过 100
func (s *MatchService) UpdateMatchStats(ctx context.Context, matchID string, req *UpdateMatchStatsRequest) (*model.MatchStats, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	st, err := s.GetMatchStats(ctx, matchID)
	if err != nil {
		return nil, err
	}

	patch := interfaces.Document{}
	if req.PossessionHome != nil {
		st.PossessionHome = req.PossessionHome
		patch["possession_home"] = *req.PossessionHome
	}
	if req.PossessionAway != nil {
		st.PossessionAway = req.PossessionAway
		patch["possession_away"] = *req.PossessionAway
	}
	for field, v := range map[string]*int{
		"shots_home":   req.ShotsHome,
		"shots_away":   req.ShotsAway,
		"corners_home": req.CornersHome,
		"corners_away": req.CornersAway,
	} {
		if v != nil {
			patch[field] = *v
		}
	}
	if len(patch) == 0 {
		return st, nil
	}
	if err := st.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.matches.UpdateStats(ctx, matchID, patch); err != nil {
		return nil, notFound(err, "match stats "+matchID)
	}
	return s.GetMatchStats(ctx, matchID)
}
