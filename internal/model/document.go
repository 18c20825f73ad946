package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document 文档表：每行是某个集合下的一条 key→JSON 文档
type Document struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Collection string         `gorm:"column:collection;type:varchar(64);not null;uniqueIndex:uq_collection_key"`
	Key        string         `gorm:"column:doc_key;type:varchar(128);not null;uniqueIndex:uq_collection_key"`
	Data       datatypes.JSON `gorm:"column:data;type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Document) TableName() string { return "documents" }
