package alarm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Maulik-008/clock-software-sub000/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Mirror keeps best-effort off-site copies of uploaded alarm audio in an S3
// bucket. Mirror failures are logged, never surfaced: the database row is
// the source of truth and nothing retries automatically.
type Mirror struct {
	client *s3.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewMirror returns nil when mirroring is disabled.
func NewMirror(cfg config.MirrorConfig, log *zap.Logger) (*Mirror, error) {
	if !cfg.Enable {
		return nil, nil
	}
	if cfg.Bucket == "" || cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete mirror config: bucket/region/access_key_id/secret_access_key are required")
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix == "" {
		prefix = "alarms"
	}

	return &Mirror{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: prefix,
		log:    log,
	}, nil
}

func (m *Mirror) objectKey(id string) string { return m.prefix + "/" + id }

// Put uploads one alarm payload.
func (m *Mirror) Put(id, contentType string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.objectKey(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		m.log.Warn("alarm mirror upload failed", zap.String("id", id), zap.Error(err))
	}
}

// Delete removes the mirrored copy of a deleted alarm.
func (m *Mirror) Delete(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.objectKey(id)),
	})
	if err != nil {
		m.log.Warn("alarm mirror delete failed", zap.String("id", id), zap.Error(err))
	}
}
