package interfaces

import (
	"context"
	"io"
)

// AvatarStore 头像对象存储
type AvatarStore interface {
	// Put 上传对象并返回可公开访问的 URL
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
}
