package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

var rdb *redis.Client

// ErrNotFound 键不存在
var ErrNotFound = errors.New("key not found")

// InitRedis 初始化Redis连接；未启用时不做任何事
func InitRedis(cfg config.RedisConfig) error {
	if !cfg.Enabled || strings.TrimSpace(cfg.Addr) == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     4,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	rdb = client
	logger.Info("Redis cache initialized successfully")
	return nil
}

// GetRedis 获取Redis客户端，未初始化时为 nil
func GetRedis() *redis.Client {
	return rdb
}

// Close 关闭Redis连接
func Close() error {
	if rdb != nil {
		err := rdb.Close()
		rdb = nil
		return err
	}
	return nil
}

// SnapshotPublisher 发布最新快照：覆盖写入 key，并在 channel 上通知 poll id
type SnapshotPublisher struct {
	client  *redis.Client
	key     string
	channel string
	ttl     time.Duration
}

// NewSnapshotPublisher 基于已初始化的全局客户端创建发布器；Redis 未启用时返回 nil
func NewSnapshotPublisher(cfg config.RedisConfig) *SnapshotPublisher {
	if rdb == nil {
		return nil
	}
	return &SnapshotPublisher{client: rdb, key: cfg.Key, channel: cfg.Channel, ttl: cfg.TTL}
}

// Publish 写入快照 JSON；channel 为空时只写 key
func (p *SnapshotPublisher) Publish(ctx context.Context, pollID string, payload []byte) error {
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.key, payload, p.ttl)
	if p.channel != "" {
		pipe.Publish(ctx, p.channel, pollID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Latest 读取最近一次发布的快照 JSON
func (p *SnapshotPublisher) Latest(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}
