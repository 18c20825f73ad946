package interfaces

import (
	"context"
	"errors"
	"iter"
)

// 集合名称
const (
	CollectionUsers            = "users"
	CollectionUserStats        = "user_stats"
	CollectionMatches          = "matches"
	CollectionMatchStats       = "match_stats"
	CollectionIdentityAccounts = "identity_accounts"
)

// ErrDocumentNotFound 文档不存在（Get/Update）
var ErrDocumentNotFound = errors.New("document not found")

// Document 无模式文档：字段名 → 值
type Document map[string]interface{}

// Filter 等值过滤条件
type Filter struct {
	Field string
	Value interface{}
}

// Eq 构造等值过滤
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// DocumentStore 文档存储能力接口（Firestore 风格），不提供事务与组合唯一索引
type DocumentStore interface {
	// NewKey 生成新文档 ID（不写入）
	NewKey(collection string) string
	// Get 读取文档，不存在返回 ErrDocumentNotFound
	Get(ctx context.Context, collection, key string) (Document, error)
	// Set 整体覆盖写（upsert）
	Set(ctx context.Context, collection, key string, doc Document) error
	// Update 合并写，文档不存在返回 ErrDocumentNotFound
	Update(ctx context.Context, collection, key string, patch Document) error
	// Delete 删除文档，不存在时不报错
	Delete(ctx context.Context, collection, key string) error
	// Query 按等值条件惰性查询，limit<=0 表示不限制；每次遍历都会重新查询
	Query(ctx context.Context, collection string, filters []Filter, limit int) iter.Seq2[Document, error]
}
