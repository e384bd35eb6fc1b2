package user

import (
	"context"
	"fmt"
	"time"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Store 用戶偏好存儲。以用戶名為鍵保存任意 JSON 物件，
// 讀取不存在的用戶時自動建立空偏好。
type Store struct {
	client *redis.Client
}

// NewStore 創建偏好存儲。Redis 不可用時返回 nil，
// 上層應將偏好視為空而非報錯。
func NewStore(cfg *config.Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		common.LogWarn("Redis 連接失敗，用戶偏好功能停用", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return &Store{client: client}
}

func prefsKey(username string) string {
	return fmt.Sprintf("user:prefs:%s", username)
}

// GetPreferences 讀取用戶偏好。用戶不存在時寫入並返回空偏好。
func (s *Store) GetPreferences(ctx context.Context, username string) (map[string]interface{}, error) {
	if s == nil {
		return map[string]interface{}{}, nil
	}

	data, err := s.client.Get(ctx, prefsKey(username)).Result()
	if err == redis.Nil {
		empty := map[string]interface{}{}
		if err := s.SetPreferences(ctx, username, empty); err != nil {
			return nil, err
		}
		common.LogInfo("自動建立新用戶偏好", zap.String("username", username))
		return empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("讀取用戶偏好失敗: %w", err)
	}

	var preferences map[string]interface{}
	if err := common.ParseJSON(data, &preferences); err != nil {
		return nil, fmt.Errorf("用戶偏好格式異常: %w", err)
	}
	return preferences, nil
}

// SetPreferences 整體覆寫用戶偏好
func (s *Store) SetPreferences(ctx context.Context, username string, preferences map[string]interface{}) error {
	if s == nil {
		return common.ErrServiceUnavailable
	}

	payload, err := common.ToJSON(preferences)
	if err != nil {
		return fmt.Errorf("序列化用戶偏好失敗: %w", err)
	}
	if err := s.client.Set(ctx, prefsKey(username), payload, 0).Err(); err != nil {
		return fmt.Errorf("寫入用戶偏好失敗: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連接
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
