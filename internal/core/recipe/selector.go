package recipe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/core/retrieval"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

// 選擇器的固定降級文案
const (
	selectorNoKeyMessage   = "API Key 未配置，默认推荐："
	selectorNoCandidates   = "没有候选菜谱。"
	selectorFailureMessage = "为您推荐以下菜谱："
)

const selectorSystemPrompt = `你是一位聪明、幽默且懂变通的私家大厨。你的任务是从给定的候选菜谱中，为用户推荐**最合适**的一道。

【推荐逻辑】：
1. **找最大公约数**：优先选择食材、口味最接近用户需求的菜。
2. **借壳上市 (Bridging) - 核心能力**：
   - 如果推荐的菜谱缺少用户手里的某个食材，**必须**在理由里建议用户“在第几步加进去”。
3. **幽默处理离谱搭配**：
   - 如果用户给出了离谱的搭配（例如“西瓜炒牛肉”），请**不要**强行推荐。
   - 请用**幽默**的语气吐槽，并给出合理的烹饪理由，但仍然必须给出一个选择。
4. **灵活处理忌口**：
   - 如果用户说“不要辣”，但候选项全都有辣，**不要拒绝回答！** 请选一个最容易“去辣”的菜，并告诉用户怎么改。

【输出格式】：
- 请直接返回一行：索引数字 ||| 推荐理由
- **严禁使用 Emoji**。
- 理由要简短（50字以内）。`

var (
	anyDigits     = regexp.MustCompile(`\d+`)
	leadingDigits = regexp.MustCompile(`^\d+`)
)

// Selector AI 優選：讓模型從候選中挑一道並給出推薦語。
type Selector struct {
	chat ChatClient
}

// NewSelector 創建選擇器
func NewSelector(chat ChatClient) *Selector {
	return &Selector{chat: chat}
}

// Select 返回選中的候選索引與推薦語。索引保證落在 [0, len(candidates))；
// 模型未配置、呼叫失敗或回覆解不開時一律降級到索引 0，絕不報錯。
func (s *Selector) Select(ctx context.Context, query string, candidates []retrieval.CandidateRecord) (int, string) {
	if s.chat == nil {
		return 0, selectorNoKeyMessage
	}
	if len(candidates) == 0 {
		return 0, selectorNoCandidates
	}

	var sb strings.Builder
	for i, doc := range candidates {
		snippet := strings.ReplaceAll(doc.Content, "\n", " ")
		if runes := []rune(snippet); len(runes) > 150 {
			snippet = string(runes[:150])
		}
		fmt.Fprintf(&sb, "选项[%d]: %s\n   - 标签: %v\n   - 简介: %s...\n\n", i, doc.Name, doc.Tags, snippet)
	}

	userPrompt := fmt.Sprintf("用户需求：【%s】\n\n候选列表：\n%s\n请做出你的选择：", query, sb.String())

	raw, err := s.chat.Chat(ctx, []ai.Message{
		ai.SystemMessage(selectorSystemPrompt),
		ai.UserMessage(userPrompt),
	})
	if err != nil {
		common.LogError("選擇器呼叫失敗", zap.Error(err))
		return 0, selectorFailureMessage
	}

	content := ai.NormalizeReply(raw)
	common.LogDebug("選擇器回覆", zap.String("content", content))

	index, reason, ok := parseSelection(content, candidates)
	if !ok {
		return 0, fmt.Sprintf("试试这道【%s】，应该不错！", candidates[0].Name)
	}
	return index, reason
}

// parseSelection 按固定順序嘗試解析 "<索引> ||| <理由>" 回覆。
// 每個分支都是全函數：解不出就落到下一個分支，永不 panic。
func parseSelection(content string, candidates []retrieval.CandidateRecord) (int, string, bool) {
	if strings.Contains(content, "|||") {
		parts := strings.SplitN(content, "|||", 2)
		if match := anyDigits.FindString(parts[0]); match != "" {
			index := clampIndex(match, len(candidates))
			return index, strings.TrimSpace(parts[1]), true
		}
	}

	if match := leadingDigits.FindString(content); match != "" {
		index := clampIndex(match, len(candidates))
		return index, fmt.Sprintf("为您推荐【%s】", candidates[index].Name), true
	}

	return 0, "", false
}

// clampIndex 越界或解析失敗的索引一律回 0
func clampIndex(digits string, count int) int {
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 || index >= count {
		return 0
	}
	return index
}
