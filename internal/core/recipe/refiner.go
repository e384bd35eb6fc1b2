package recipe

import (
	"context"
	"fmt"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

const refinerSystemPrompt = `你是一个搜索关键词优化助手。用户正在搜索菜谱，并给出了一些补充调整意见。
请根据用户的初始搜索词和补充意见，重写一个更精准的搜索关键词。

【规则】
1. 输出**仅**包含新的搜索词，不要有任何解释。
2. 如果用户说“不要辣”，新词可以包含“清淡”或“不辣”。
3. 保持简短精炼。`

// QueryRefiner 依用戶回饋重寫搜索詞
type QueryRefiner struct {
	chat ChatClient
}

// NewQueryRefiner 創建搜索詞優化器
func NewQueryRefiner(chat ChatClient) *QueryRefiner {
	return &QueryRefiner{chat: chat}
}

// Refine 重寫搜索詞。模型未配置、回饋為空或呼叫失敗時原樣返回。
func (r *QueryRefiner) Refine(ctx context.Context, query, refinement string) string {
	if r.chat == nil || refinement == "" {
		return query
	}

	userPrompt := fmt.Sprintf("初始搜索词：%s\n用户补充意见：%s\n\n请重写搜索词：", query, refinement)

	raw, err := r.chat.Chat(ctx, []ai.Message{
		ai.SystemMessage(refinerSystemPrompt),
		ai.UserMessage(userPrompt),
	})
	if err != nil {
		common.LogWarn("搜索詞優化失敗", zap.Error(err))
		return query
	}

	newQuery := ai.NormalizeReply(raw)
	if newQuery == "" {
		return query
	}

	common.LogInfo("搜索詞優化",
		zap.String("原始", query),
		zap.String("回饋", refinement),
		zap.String("新詞", newQuery),
	)
	return newQuery
}
