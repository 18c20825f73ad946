// Package storage S3 兼容对象存储（Cloudflare R2 / MinIO / AWS S3），用于用户头像
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	appconfig "PenaltyHub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// putObjectAPI s3.Client 的最小子集，便于测试替换
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore 头像上传
type S3AvatarStore struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
	logger        *logrus.Logger
}

// NewS3AvatarStore 按配置创建 S3 客户端
func NewS3AvatarStore(ctx context.Context, cfg *appconfig.AvatarConfig, logger *logrus.Logger) (*S3AvatarStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("avatar.bucket 未配置")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载对象存储配置失败: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicBase == "" {
		if cfg.Endpoint != "" {
			publicBase = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	logger.WithFields(logrus.Fields{"bucket": cfg.Bucket, "public_base_url": publicBase}).Info("头像对象存储已启用")
	return newS3AvatarStore(client, cfg.Bucket, publicBase, logger), nil
}

func newS3AvatarStore(client putObjectAPI, bucket, publicBaseURL string, logger *logrus.Logger) *S3AvatarStore {
	return &S3AvatarStore{client: client, bucket: bucket, publicBaseURL: publicBaseURL, logger: logger}
}

// Put 上传对象，返回公开 URL
func (s *S3AvatarStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("上传头像失败: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}
