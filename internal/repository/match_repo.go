package repository

import (
	"context"
	"fmt"
	"iter"

	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"
)

// MatchRepository matches / match_stats 集合的类型化访问
type MatchRepository interface {
	NewMatchID() string
	SaveMatch(ctx context.Context, m *model.Match) error
	GetMatch(ctx context.Context, matchID string) (*model.Match, error)
	UpdateMatch(ctx context.Context, matchID string, patch interfaces.Document) error
	// ListMatches status 为空表示不过滤
	ListMatches(ctx context.Context, status model.MatchStatus, limit int) iter.Seq2[*model.Match, error]
	SaveStats(ctx context.Context, s *model.MatchStats) error
	GetStats(ctx context.Context, matchID string) (*model.MatchStats, error)
	UpdateStats(ctx context.Context, matchID string, patch interfaces.Document) error
}

type matchRepository struct {
	store interfaces.DocumentStore
}

// NewMatchRepository 创建比赛仓储
func NewMatchRepository(store interfaces.DocumentStore) MatchRepository {
	return &matchRepository{store: store}
}

func (r *matchRepository) NewMatchID() string {
	return r.store.NewKey(interfaces.CollectionMatches)
}

func (r *matchRepository) SaveMatch(ctx context.Context, m *model.Match) error {
	doc, err := Encode(m)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, interfaces.CollectionMatches, m.MatchID, doc)
}

func (r *matchRepository) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	doc, err := r.store.Get(ctx, interfaces.CollectionMatches, matchID)
	if err != nil {
		return nil, err
	}
	var m model.Match
	if err := Decode(doc, &m); err != nil {
		return nil, fmt.Errorf("matches/%s: %w", matchID, err)
	}
	return &m, nil
}

func (r *matchRepository) UpdateMatch(ctx context.Context, matchID string, patch interfaces.Document) error {
	return r.store.Update(ctx, interfaces.CollectionMatches, matchID, patch)
}

func (r *matchRepository) ListMatches(ctx context.Context, status model.MatchStatus, limit int) iter.Seq2[*model.Match, error] {
	var filters []interfaces.Filter
	if status != "" {
		filters = append(filters, interfaces.Eq("status", string(status)))
	}
	return func(yield func(*model.Match, error) bool) {
		for doc, err := range r.store.Query(ctx, interfaces.CollectionMatches, filters, limit) {
			if err != nil {
				yield(nil, err)
				return
			}
			var m model.Match
			if err := Decode(doc, &m); err != nil {
				yield(nil, fmt.Errorf("matches: %w", err))
				return
			}
			if !yield(&m, nil) {
				return
			}
		}
	}
}

func (r *matchRepository) SaveStats(ctx context.Context, s *model.MatchStats) error {
	doc, err := Encode(s)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, interfaces.CollectionMatchStats, s.MatchID, doc)
}

func (r *matchRepository) GetStats(ctx context.Context, matchID string) (*model.MatchStats, error) {
	doc, err := r.store.Get(ctx, interfaces.CollectionMatchStats, matchID)
	if err != nil {
		return nil, err
	}
	var s model.MatchStats
	if err := Decode(doc, &s); err != nil {
		return nil, fmt.Errorf("match_stats/%s: %w", matchID, err)
	}
	return &s, nil
}

func (r *matchRepository) UpdateStats(ctx context.Context, matchID string, patch interfaces.Document) error {
	return r.store.Update(ctx, interfaces.CollectionMatchStats, matchID, patch)
}
