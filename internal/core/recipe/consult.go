package recipe

import (
	"context"
	"fmt"
	"strings"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

// 顧問的固定降級文案
const (
	consultNoKeyMessage = "抱歉，AI 厨师目前无法连接大脑 (API Key Missing)。"
	consultBusyMessage  = "抱歉，厨房太忙了，请稍后再试。"
)

const consultSystemPrompt = `你是一位高端家庭餐厅的主厨顾问。你的任务是根据当前的“搜索结果上下文”和“对话历史”，回答用户的追问。

【要求】:
1. 语气专业、优雅、幽默。
2. 如果用户想换口味，请基于列表里的其他菜推荐，或者给出烹饪建议。
3. 字数控制在 100 字左右。`

// Consultant 針對搜尋結果的追問對話
type Consultant struct {
	chat ChatClient
	// historyWindow 只取最近 N 輪對話進 prompt
	historyWindow int
}

// NewConsultant 創建主廚顧問
func NewConsultant(chat ChatClient, historyWindow int) *Consultant {
	if historyWindow <= 0 {
		historyWindow = 4
	}
	return &Consultant{
		chat:          chat,
		historyWindow: historyWindow,
	}
}

// Consult 回答追問。模型未配置或呼叫失敗時返回固定文案。
func (c *Consultant) Consult(ctx context.Context, query, contextText string, history []ConversationTurn) string {
	if c.chat == nil {
		return consultNoKeyMessage
	}

	if len(history) > c.historyWindow {
		history = history[len(history)-c.historyWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}

	userPrompt := fmt.Sprintf(
		"【当前菜谱列表上下文】：\n%s\n\n【对话历史】：\n%s\n\n【用户新问题】：\n%s\n\n请主厨作答：",
		contextText, strings.Join(lines, "\n"), query,
	)

	raw, err := c.chat.Chat(ctx, []ai.Message{
		ai.SystemMessage(consultSystemPrompt),
		ai.UserMessage(userPrompt),
	})
	if err != nil {
		common.LogError("顧問對話失敗", zap.Error(err))
		return consultBusyMessage
	}

	reply := ai.NormalizeReply(raw)
	if reply == "" {
		return consultBusyMessage
	}
	return reply
}
