package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

// StorageWriter 原始回显归档写入器
type StorageWriter interface {
	Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error)
}

// StorageMeta 归档元数据；路径为 prefix/host/YYYYMMDD_HHMMSS_pollID/command.txt
type StorageMeta struct {
	Host     string
	PollID   string
	PolledAt time.Time
	Command  string
}

// StoredObject 已写入的对象
type StoredObject struct {
	URI         string `json:"uri"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"`
	ContentType string `json:"content_type"`
}

const archiveContentType = "text/plain; charset=utf-8"

// objectPath 本地与 MinIO 共用的相对路径（POSIX 风格）
func objectPath(prefix string, meta StorageMeta) string {
	parts := []string{}
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, slug(meta.Host))
	at := meta.PolledAt
	if at.IsZero() {
		at = time.Now()
	}
	dir := at.Format("20060102_150405")
	if id := strings.TrimSpace(meta.PollID); id != "" {
		dir += "_" + slug(id)
	}
	parts = append(parts, dir, slug(meta.Command)+".txt")
	return path.Join(parts...)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// NewStorageWriter 根据 archive.backend 创建写入器；minio 不可用时回退本地
func NewStorageWriter(cfg *config.Config) StorageWriter {
	local := &LocalStorageWriter{baseDir: cfg.Archive.BaseDir, prefix: cfg.Archive.Prefix}
	if strings.ToLower(strings.TrimSpace(cfg.Archive.Backend)) != "minio" {
		return local
	}
	return &DelegatingStorageWriter{local: local, minio: initMinioWriter(cfg.Storage.Minio, cfg.Archive.Prefix)}
}

// DelegatingStorageWriter 先写 MinIO，失败时回退到本地
type DelegatingStorageWriter struct {
	local *LocalStorageWriter
	minio *MinioStorageWriter
}

func (w *DelegatingStorageWriter) Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error) {
	if w.minio == nil {
		logger.Warnf("MinIO backend selected but client not initialized; falling back to local")
		return w.local.Write(ctx, meta, content)
	}
	obj, err := w.minio.Write(ctx, meta, content)
	if err == nil {
		return obj, nil
	}
	logger.WithError(err).Warn("MinIO write failed; falling back to local")
	objLocal, lerr := w.local.Write(ctx, meta, content)
	if lerr != nil {
		return StoredObject{}, fmt.Errorf("minio write failed: %v; local fallback failed: %w", err, lerr)
	}
	return objLocal, nil
}

// LocalStorageWriter 本地文件写入
type LocalStorageWriter struct {
	baseDir string
	prefix  string
}

func (w *LocalStorageWriter) Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error) {
	baseDir := strings.TrimSpace(w.baseDir)
	if baseDir == "" {
		baseDir = "./data/raw"
	}
	fullPath := filepath.Join(baseDir, filepath.FromSlash(objectPath(w.prefix, meta)))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("failed to create dir: %w", err)
	}

	data := []byte(content)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return StoredObject{}, fmt.Errorf("failed to write file: %w", err)
	}
	return StoredObject{
		URI:         "file://" + fullPath,
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: archiveContentType,
	}, nil
}

// MinioStorageWriter MinIO 对象存储写入
type MinioStorageWriter struct {
	client        *minio.Client
	endpoint      string
	bucket        string
	prefix        string
	bucketEnsured bool
}

// initMinioWriter 初始化 MinIO 写入器（包含超时设置与 bucket 校验）
func initMinioWriter(cfg config.MinioConfig, prefix string) *MinioStorageWriter {
	host := strings.TrimSpace(cfg.Host)
	if host == "" || cfg.Port <= 0 {
		logger.Warnf("MinIO configuration incomplete; host/port missing")
		return nil
	}
	endpoint := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   16,
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.Secure,
		Transport: transport,
	})
	if err != nil {
		logger.WithError(err).Error("MinIO client initialization failed")
		return nil
	}

	w := &MinioStorageWriter{client: client, endpoint: endpoint, bucket: strings.TrimSpace(cfg.Bucket), prefix: prefix}
	if w.bucket == "" {
		logger.Warnf("MinIO bucket not configured")
		return w
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.ensureBucket(ctx, 1); err != nil {
		logger.WithError(err).Warn("MinIO bucket ensure at init failed")
	} else {
		w.bucketEnsured = true
	}
	return w
}

// Write 将内容写入 MinIO
func (w *MinioStorageWriter) Write(ctx context.Context, meta StorageMeta, content string) (StoredObject, error) {
	if w == nil || w.client == nil {
		return StoredObject{}, fmt.Errorf("minio client not initialized")
	}
	if w.bucket == "" {
		return StoredObject{}, fmt.Errorf("minio bucket not configured")
	}
	if !w.bucketEnsured {
		if err := w.ensureBucket(ctx, 2); err != nil {
			return StoredObject{}, fmt.Errorf("minio ensure bucket failed: %w", err)
		}
		w.bucketEnsured = true
	}

	objectName := objectPath(w.prefix, meta)
	data := []byte(content)

	// 带退避的有限重试
	var lastErr error
	for _, wait := range []time.Duration{time.Second, 2 * time.Second} {
		attemptCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		_, err := w.client.PutObject(attemptCtx, w.bucket, objectName, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: archiveContentType})
		cancel()
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return StoredObject{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	if lastErr != nil {
		return StoredObject{}, fmt.Errorf("minio put object to %s failed after retries: %w", w.endpoint, lastErr)
	}

	return StoredObject{
		URI:         "minio://" + path.Join(w.bucket, objectName),
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: archiveContentType,
	}, nil
}

// ensureBucket 校验并创建 bucket，支持有限重试
func (w *MinioStorageWriter) ensureBucket(ctx context.Context, retries int) error {
	var lastErr error
	for i := 0; i <= retries; i++ {
		exists, err := w.client.BucketExists(ctx, w.bucket)
		if err == nil && exists {
			return nil
		}
		if err == nil {
			if err = w.client.MakeBucket(ctx, w.bucket, minio.MakeBucketOptions{}); err == nil {
				return nil
			}
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return lastErr
}

var slugRe = regexp.MustCompile(`[^a-z0-9._-]+`)

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = slugRe.ReplaceAllString(s, "")
	if s == "" {
		s = "unknown"
	}
	return s
}
