package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"
)

func TestUserRepositoryNicknameTag(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewMemoryStore())
	now := time.Now().UTC()
	u := &model.User{UID: "u1", Nickname: "Nico", Tag: "0007", Status: model.UserStatusActive, CreatedAt: now, UpdatedAt: now}
	if err := repo.SaveUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	ok, err := repo.NicknameTagExists(ctx, "Nico", "0007")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}
	ok, _ = repo.NicknameTagExists(ctx, "nico", "0007")
	if ok {
		t.Error("nickname match must be exact")
	}

	got, err := repo.FindByNicknameTag(ctx, "Nico", "0007")
	if err != nil || got.UID != "u1" {
		t.Fatalf("FindByNicknameTag = %+v, %v", got, err)
	}
	if _, err := repo.FindByNicknameTag(ctx, "Nico", "9999"); !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Errorf("missing tag: err = %v", err)
	}
}

func TestMatchRepositoryListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(NewMemoryStore())
	now := time.Now().UTC()
	for i, st := range []model.MatchStatus{model.MatchScheduled, model.MatchLive, model.MatchLive} {
		m := &model.Match{MatchID: repo.NewMatchID(), HomeTeam: "A", AwayTeam: "B", Status: st, CreatedAt: now, UpdatedAt: now}
		if err := repo.SaveMatch(ctx, m); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	count := func(status model.MatchStatus, limit int) int {
		n := 0
		for m, err := range repo.ListMatches(ctx, status, limit) {
			if err != nil {
				t.Fatal(err)
			}
			if status != "" && m.Status != status {
				t.Errorf("got status %s, want %s", m.Status, status)
			}
			n++
		}
		return n
	}
	if n := count("", 0); n != 3 {
		t.Errorf("all = %d", n)
	}
	if n := count(model.MatchLive, 0); n != 2 {
		t.Errorf("live = %d", n)
	}
	if n := count(model.MatchLive, 1); n != 1 {
		t.Errorf("live limit 1 = %d", n)
	}
}
