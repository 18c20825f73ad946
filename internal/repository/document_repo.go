package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentStore 基于 PostgreSQL jsonb 的文档存储，所有集合共用 documents 表
type GormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore 创建文档存储
func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

func (r *GormDocumentStore) NewKey(collection string) string {
	return uuid.NewString()
}

func (r *GormDocumentStore) Get(ctx context.Context, collection, key string) (interfaces.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).Where("collection = ? AND doc_key = ?", collection, key).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interfaces.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取文档 %s/%s 失败: %w", collection, key, err)
	}
	return unmarshalDocument(d.Data)
}

func (r *GormDocumentStore) Set(ctx context.Context, collection, key string, doc interfaces.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	now := time.Now()
	row := &model.Document{
		Collection: collection,
		Key:        key,
		Data:       datatypes.JSON(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(row).Error; err != nil {
		return fmt.Errorf("写入文档 %s/%s 失败: %w", collection, key, err)
	}
	return nil
}

// Update 顶层字段合并（jsonb ||），与 Firestore update 语义一致
func (r *GormDocumentStore) Update(ctx context.Context, collection, key string, patch interfaces.Document) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("collection = ? AND doc_key = ?", collection, key).
		Updates(map[string]interface{}{
			"data":       gorm.Expr("data || ?::jsonb", string(raw)),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("更新文档 %s/%s 失败: %w", collection, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrDocumentNotFound
	}
	return nil
}

func (r *GormDocumentStore) Delete(ctx context.Context, collection, key string) error {
	if err := r.db.WithContext(ctx).Where("collection = ? AND doc_key = ?", collection, key).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("删除文档 %s/%s 失败: %w", collection, key, err)
	}
	return nil
}

// Query 使用游标逐行读取，遍历结束或提前退出时关闭
func (r *GormDocumentStore) Query(ctx context.Context, collection string, filters []interfaces.Filter, limit int) iter.Seq2[interfaces.Document, error] {
	return func(yield func(interfaces.Document, error) bool) {
		q := r.db.WithContext(ctx).Model(&model.Document{}).Where("collection = ?", collection)
		for _, f := range filters {
			q = q.Where(datatypes.JSONQuery("data").Equals(f.Value, f.Field))
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		rows, err := q.Order("id ASC").Rows()
		if err != nil {
			yield(nil, fmt.Errorf("查询集合 %s 失败: %w", collection, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var d model.Document
			if err := r.db.ScanRows(rows, &d); err != nil {
				yield(nil, err)
				return
			}
			doc, err := unmarshalDocument(d.Data)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// AutoMigrate 创建 documents 表
func (r *GormDocumentStore) AutoMigrate() error {
	return r.db.AutoMigrate(&model.Document{})
}
