package recipe

import (
	"context"
	"encoding/json"

	"aichef-rag/internal/core/ai"
)

// RecipeStep 單個做菜步驟
type RecipeStep struct {
	StepIndex   int     `json:"step_index"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// FormattedRecipe 清洗後的菜譜。CoverImage 只在生圖管線中由 nil 變為 URL 一次，
// 生圖失敗時保持 nil，絕不出現字面量 "null"。
type FormattedRecipe struct {
	RecipeID   string       `json:"recipe_id"`
	RecipeName string       `json:"recipe_name"`
	Tags       []string     `json:"tags"`
	CoverImage *string      `json:"cover_image"`
	Steps      []RecipeStep `json:"steps"`
	Message    string       `json:"message"`
}

// ResultSet 列表搜尋的最終輸出
type ResultSet struct {
	Candidates []*FormattedRecipe `json:"candidates"`
	AIMessage  string             `json:"ai_message"`
}

// ConversationTurn 顧問對話的一輪
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient 對話模型呼叫介面。nil 表示未配置模型，各階段走固定降級路徑。
type ChatClient interface {
	Chat(ctx context.Context, messages []ai.Message) (json.RawMessage, error)
}

// ImageGenerator 生圖介面。nil 表示未配置生圖後端。
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
