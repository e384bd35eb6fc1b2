package retrieval

import (
	"context"
	"fmt"
	"net/http"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// QdrantStore Qdrant REST 檢索客戶端（假設 cosine 距離）
type QdrantStore struct {
	config *config.Config
	client *resty.Client
}

// NewQdrantStore 創建 Qdrant 客戶端
func NewQdrantStore(cfg *config.Config) *QdrantStore {
	client := resty.New().
		SetBaseURL(cfg.Retrieval.QdrantURL).
		SetTimeout(cfg.Retrieval.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.Retrieval.QdrantAPIKey != "" {
		client.SetHeader("api-key", cfg.Retrieval.QdrantAPIKey)
	}

	return &QdrantStore{
		config: cfg,
		client: client,
	}
}

// Search 以向量查詢 topK 筆候選，preferences 轉為 payload 過濾條件
func (s *QdrantStore) Search(ctx context.Context, vector []float64, topK int, preferences map[string]interface{}) ([]CandidateRecord, error) {
	if topK <= 0 {
		topK = 5
	}

	req := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	if len(preferences) > 0 {
		must := make([]map[string]interface{}, 0, len(preferences))
		for key, value := range preferences {
			must = append(must, map[string]interface{}{
				"key":   key,
				"match": map[string]interface{}{"value": value},
			})
		}
		req["filter"] = map[string]interface{}{"must": must}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/collections/%s/points/search", s.config.Retrieval.Collection))

	if err != nil {
		return nil, fmt.Errorf("failed to search qdrant: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("qdrant returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Result []struct {
			ID      interface{}            `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse qdrant response: %w", err)
	}

	records := make([]CandidateRecord, 0, len(result.Result))
	for _, r := range result.Result {
		record := CandidateRecord{
			ID:    fmt.Sprintf("%v", r.ID),
			Score: r.Score,
		}
		if v, ok := r.Payload["id"].(string); ok && v != "" {
			record.ID = v
		}
		if v, ok := r.Payload["name"].(string); ok {
			record.Name = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			record.Content = v
		}
		if v, ok := r.Payload["image"].(string); ok {
			record.Image = v
		}
		record.Tags = r.Payload["tags"]
		record.Instructions = r.Payload["instructions"]
		records = append(records, record)
	}

	return records, nil
}
