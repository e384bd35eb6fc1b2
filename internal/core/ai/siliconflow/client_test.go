package siliconflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.Model = "deepseek-ai/DeepSeek-V3"
	cfg.LLM.MaxTokens = 512
	cfg.LLM.Temperature = 0.7
	cfg.LLM.Timeout = 5 * time.Second
	return cfg
}

func TestChat(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "1 ||| 推荐这道"}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	raw, err := client.Chat(context.Background(), []ai.Message{
		ai.SystemMessage("你是大厨"),
		ai.UserMessage("想吃番茄"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1 ||| 推荐这道", ai.NormalizeReply(raw))
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", gotBody["model"])

	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestChatNonStringContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": [{"type": "text", "text": "片段"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	raw, err := client.Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
	require.NoError(t, err)

	// content 原樣透傳，由 NormalizeReply 整形
	assert.Contains(t, ai.NormalizeReply(raw), "片段")
}

func TestChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Chat(context.Background(), []ai.Message{ai.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
