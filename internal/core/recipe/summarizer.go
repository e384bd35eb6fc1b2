package recipe

import (
	"context"
	"fmt"
	"strings"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

// 綜述的固定降級文案
const (
	summaryNoKeyMessage   = "AI 厨师正在休息（未配置 API Key），请直接查看下方菜谱。"
	summaryNoCandidates   = "抱歉，没有找到相关菜谱，我也很难为您提供建议。"
	summaryFailureMessage = "基于您的食材偏好，我为您甄选了以下几道值得尝试的美味佳肴。"
)

const summarizerSystemPrompt = `你是一位高端家庭餐厅的主厨顾问，性格幽默风趣。用户的需求可能只是几个食材名。
你的任务是根据搜索到的菜谱列表，给用户一段**专业、优雅且得体**的开场建议。

【核心任务】：
1.  **语气**：专业且幽默，但**严禁使用 Emoji**。
2.  **总结亮点**：概括推荐菜品的特色。
3.  **主动桥接 (Bridging)**：
    - 仔细对比【用户想吃的】和【搜索到的】。
    - 如果搜到的菜谱**缺少**用户提到的某个食材，请务必在生成的内容里**建议用户把它加进去**。
4.  **幽默排雷**：
    - 遇到黑暗料理组合（如“巧克力炖蒜”），必须先幽默吐槽（基于烹饪原理），再推荐正常菜谱。
5.  **字数**：控制在 100 字以内。`

// Summarizer 為最終候選列表生成主廚顧問風格的綜述
type Summarizer struct {
	chat ChatClient
}

// NewSummarizer 創建綜述器
func NewSummarizer(chat ChatClient) *Summarizer {
	return &Summarizer{chat: chat}
}

// Summarize 生成綜述。模型未配置或呼叫失敗時返回固定文案。
func (s *Summarizer) Summarize(ctx context.Context, userIntent string, items []*FormattedRecipe) string {
	if s.chat == nil {
		return summaryNoKeyMessage
	}
	if len(items) == 0 {
		return summaryNoCandidates
	}

	var sb strings.Builder
	for i, item := range items {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s (标签: %s)\n", item.RecipeName, strings.Join(item.Tags, "、"))
	}

	userPrompt := fmt.Sprintf(
		"用户想吃/有的食材：【%s】\n搜索到的菜谱：\n%s\n请给用户一段简短的高级感推荐语：",
		userIntent, sb.String(),
	)

	raw, err := s.chat.Chat(ctx, []ai.Message{
		ai.SystemMessage(summarizerSystemPrompt),
		ai.UserMessage(userPrompt),
	})
	if err != nil {
		common.LogError("綜述生成失敗", zap.Error(err))
		return summaryFailureMessage
	}

	content := ai.NormalizeReply(raw)
	if content == "" {
		return summaryFailureMessage
	}

	common.LogDebug("綜述回覆", zap.Int("length", len(content)))
	return content
}
