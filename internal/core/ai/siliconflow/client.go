package siliconflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client SiliconFlow 對話 API 客戶端（OpenAI 相容介面）
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 SiliconFlow 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.LLM.BaseURL).
		SetTimeout(cfg.LLM.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.LLM.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Chat 發送對話請求，返回模型回覆的原始 content。
// content 可能是字串、片段列表或物件，由呼叫端以 ai.NormalizeReply 整形。
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (json.RawMessage, error) {
	req := map[string]interface{}{
		"model":       c.config.LLM.Model,
		"messages":    messages,
		"max_tokens":  c.config.LLM.MaxTokens,
		"temperature": c.config.LLM.Temperature,
	}

	common.LogDebug("Sending chat request",
		zap.String("model", c.config.LLM.Model),
		zap.Int("messages", len(messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to send chat request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("chat API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage ai.Usage `json:"usage"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat response")
	}

	common.LogDebug("Chat response received",
		zap.Int("content_length", len(result.Choices[0].Message.Content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return result.Choices[0].Message.Content, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
