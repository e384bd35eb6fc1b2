package service

import (
	"context"
	"encoding/json"
	"time"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/core/ai/cache"
	"aichef-rag/internal/core/ai/siliconflow"
	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"
)

// Service 對話模型服務：包裝傳輸客戶端並套用回應快取。
type Service struct {
	config       *config.Config
	client       *siliconflow.Client
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) *Service {
	return &Service{
		config:       cfg,
		client:       siliconflow.NewClient(cfg),
		cacheManager: cacheManager,
	}
}

// Chat 發送對話請求，帶快取。
func (s *Service) Chat(ctx context.Context, messages []ai.Message) (json.RawMessage, error) {
	payload, err := common.ToJSON(messages)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, "chat", payload); err == nil && val != "" {
			return json.RawMessage(val), nil
		}
	}

	start := time.Now()
	content, err := s.client.Chat(ctx, messages)
	common.LogAICall("chat", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, "chat", payload, string(content))
	}

	return content, nil
}

// Close 關閉服務
func (s *Service) Close() error {
	return s.client.Close()
}
