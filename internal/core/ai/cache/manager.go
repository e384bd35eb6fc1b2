package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheManager Redis 回應快取管理器。
// 同一組對話消息在 TTL 內只打一次上游模型。
type CacheManager struct {
	config *config.Config
	client *redis.Client
}

// NewManager 創建快取管理器。快取停用時返回 nil，呼叫端以 nil 判斷略過。
func NewManager(cfg *config.Config) *CacheManager {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		common.LogWarn("Failed to connect to Redis, cache disabled",
			zap.Error(err),
			zap.String("addr", cfg.Redis.Addr),
		)
		return nil
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("存活時間", cfg.Cache.TTL),
	)

	return &CacheManager{
		config: cfg,
		client: client,
	}
}

// Get 獲取快取值
func (m *CacheManager) Get(ctx context.Context, kind, payload string) (string, error) {
	if m == nil || m.client == nil {
		return "", common.ErrCacheDisabled
	}

	key := m.generateKey(kind, payload)
	data, err := m.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			common.LogDebug("快取未命中", zap.String("類型", kind))
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogInfo("快取命中", zap.String("類型", kind))
	return data, nil
}

// Set 設置快取值
func (m *CacheManager) Set(ctx context.Context, kind, payload, value string) error {
	if m == nil || m.client == nil {
		return nil
	}

	key := m.generateKey(kind, payload)
	if err := m.client.Set(ctx, key, value, m.config.Cache.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// generateKey 生成快取鍵
func (m *CacheManager) generateKey(kind, payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("ai:%s:%s", kind, hex.EncodeToString(hash[:]))
}

// Close 關閉快取管理器
func (m *CacheManager) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	common.LogInfo("快取管理員已關閉")
	return m.client.Close()
}
