package ai

// Message 與對話模型的單條消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// 角色常量
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// SystemMessage 建立 system 消息
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage 建立 user 消息
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Usage 使用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
