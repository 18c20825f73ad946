package repository

import (
	"context"
	"errors"
	"testing"

	"PenaltyHub/internal/interfaces"

	"github.com/google/go-cmp/cmp"
)

func collect(t *testing.T, seq func(func(interfaces.Document, error) bool)) []interfaces.Document {
	t.Helper()
	var out []interfaces.Document
	for doc, err := range seq {
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		out = append(out, doc)
	}
	return out
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "users", "nope")
	if !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestMemoryStoreSetReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Set(ctx, "users", "u1", interfaces.Document{"a": 1, "b": "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "users", "u1", interfaces.Document{"a": 2}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(interfaces.Document{"a": float64(2)}, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Update(ctx, "users", "u1", interfaces.Document{"a": 1}); !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("update on missing doc: err = %v", err)
	}
	_ = s.Set(ctx, "users", "u1", interfaces.Document{"a": 1, "b": "x"})
	if err := s.Update(ctx, "users", "u1", interfaces.Document{"b": "y", "c": true}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "users", "u1")
	want := interfaces.Document{"a": float64(1), "b": "y", "c": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "users", "u1", interfaces.Document{"a": "x"})
	got, _ := s.Get(ctx, "users", "u1")
	got["a"] = "mutated"
	again, _ := s.Get(ctx, "users", "u1")
	if again["a"] != "x" {
		t.Errorf("stored document was mutated through a read: %v", again)
	}
}

func TestMemoryStoreQueryFiltersAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "users", "u1", interfaces.Document{"nickname": "Nico", "tag": "0007"})
	_ = s.Set(ctx, "users", "u2", interfaces.Document{"nickname": "Nico", "tag": "0008"})
	_ = s.Set(ctx, "users", "u3", interfaces.Document{"nickname": "Ada", "tag": "0007"})

	got := collect(t, s.Query(ctx, "users", []interfaces.Filter{interfaces.Eq("nickname", "Nico"), interfaces.Eq("tag", "0007")}, 0))
	if len(got) != 1 || got[0]["tag"] != "0007" || got[0]["nickname"] != "Nico" {
		t.Errorf("compound filter = %v", got)
	}

	got = collect(t, s.Query(ctx, "users", []interfaces.Filter{interfaces.Eq("nickname", "Nico")}, 1))
	if len(got) != 1 {
		t.Errorf("limit 1 returned %d docs", len(got))
	}

	got = collect(t, s.Query(ctx, "users", nil, 0))
	if len(got) != 3 {
		t.Errorf("unfiltered query returned %d docs, want 3", len(got))
	}
}

func TestMemoryStoreQueryNumericFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "matches", "m1", interfaces.Document{"home_score": 3})
	got := collect(t, s.Query(ctx, "matches", []interfaces.Filter{interfaces.Eq("home_score", 3)}, 0))
	if len(got) != 1 {
		t.Errorf("int filter should match stored number, got %d docs", len(got))
	}
}

func TestMemoryStoreQueryIsRestartable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "matches", "m1", interfaces.Document{"status": "live"})
	seq := s.Query(ctx, "matches", nil, 0)
	if n := len(collect(t, seq)); n != 1 {
		t.Fatalf("first pass = %d", n)
	}
	_ = s.Set(ctx, "matches", "m2", interfaces.Document{"status": "live"})
	if n := len(collect(t, seq)); n != 2 {
		t.Errorf("second pass = %d, want 2 (query re-runs on each iteration)", n)
	}
}
