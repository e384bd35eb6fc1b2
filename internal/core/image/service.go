package image

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Service SiliconFlow 生圖服務（Kwai-Kolors 等模型）
type Service struct {
	config *config.Config
	client *resty.Client
}

// NewService 創建生圖服務
func NewService(cfg *config.Config) *Service {
	client := resty.New().
		SetBaseURL(cfg.LLM.BaseURL).
		SetTimeout(cfg.ImageGen.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.LLM.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.ImageGen.MaxRetries).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 限流與上游 5xx 才重試
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Service{
		config: cfg,
		client: client,
	}
}

// Generate 以 prompt 生成一張圖，返回圖片 URL。
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model":               s.config.ImageGen.Model,
		"prompt":              prompt,
		"image_size":          s.config.ImageGen.ImageSize,
		"batch_size":          1,
		"num_inference_steps": s.config.ImageGen.InferenceSteps,
		"guidance_scale":      s.config.ImageGen.GuidanceScale,
	}

	common.LogInfo("Sending image generation request",
		zap.String("model", s.config.ImageGen.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/images/generations")

	if err != nil {
		return "", fmt.Errorf("failed to send image request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("image API returned error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse image response: %w", err)
	}

	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", fmt.Errorf("no image url in response")
	}

	return result.Images[0].URL, nil
}
