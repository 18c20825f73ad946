package repository

import (
	"context"
	"encoding/json"
	"iter"
	"reflect"
	"sort"
	"sync"

	"PenaltyHub/internal/interfaces"

	"github.com/google/uuid"
)

// MemoryStore 进程内文档存储（database.driver=memory 与单元测试使用）。
// 文档以 JSON 形式保存，读写行为与 jsonb 存储一致
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) NewKey(collection string) string {
	return uuid.NewString()
}

func (s *MemoryStore) Get(ctx context.Context, collection, key string) (interfaces.Document, error) {
	s.mu.RLock()
	raw, ok := s.collections[collection][key]
	s.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrDocumentNotFound
	}
	return unmarshalDocument(raw)
}

func (s *MemoryStore) Set(ctx context.Context, collection, key string, doc interfaces.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		s.collections[collection] = c
	}
	c[key] = raw
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, key string, patch interfaces.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.collections[collection][key]
	if !ok {
		return interfaces.ErrDocumentNotFound
	}
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return err
	}
	for k, v := range patch {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.collections[collection][key] = merged
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key)
	return nil
}

// Query 在开始遍历时对匹配文档做快照，按 key 排序后逐条产出
func (s *MemoryStore) Query(ctx context.Context, collection string, filters []interfaces.Filter, limit int) iter.Seq2[interfaces.Document, error] {
	return func(yield func(interfaces.Document, error) bool) {
		want, err := normalizeFilters(filters)
		if err != nil {
			yield(nil, err)
			return
		}

		s.mu.RLock()
		keys := make([]string, 0, len(s.collections[collection]))
		for k := range s.collections[collection] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		snapshot := make([][]byte, 0, len(keys))
		for _, k := range keys {
			snapshot = append(snapshot, s.collections[collection][k])
		}
		s.mu.RUnlock()

		n := 0
		for _, raw := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			doc, err := unmarshalDocument(raw)
			if err != nil {
				yield(nil, err)
				return
			}
			if !matches(doc, want) {
				continue
			}
			if !yield(doc, nil) {
				return
			}
			n++
			if limit > 0 && n >= limit {
				return
			}
		}
	}
}

func unmarshalDocument(raw []byte) (interfaces.Document, error) {
	var doc interfaces.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeFilters 过滤值同样经过 JSON 往返，保证与存储值可比较
func normalizeFilters(filters []interfaces.Filter) (map[string]interface{}, error) {
	want := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		want[f.Field] = v
	}
	return want, nil
}

func matches(doc interfaces.Document, want map[string]interface{}) bool {
	for field, v := range want {
		got, ok := doc[field]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}
