package retrieval

import (
	"context"
	"fmt"
	"net/http"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// EmbeddingClient OpenAI 相容介面的向量化客戶端
type EmbeddingClient struct {
	config *config.Config
	client *resty.Client
}

// NewEmbeddingClient 創建向量化客戶端
func NewEmbeddingClient(cfg *config.Config) *EmbeddingClient {
	client := resty.New().
		SetBaseURL(cfg.LLM.BaseURL).
		SetTimeout(cfg.Retrieval.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.LLM.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &EmbeddingClient{
		config: cfg,
		client: client,
	}
}

// Embed 將查詢文字轉為向量
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	req := map[string]interface{}{
		"model": c.config.Retrieval.EmbeddingModel,
		"input": text,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/embeddings")

	if err != nil {
		return nil, fmt.Errorf("failed to send embedding request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	return result.Data[0].Embedding, nil
}
