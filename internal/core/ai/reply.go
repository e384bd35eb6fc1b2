package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeReply 將模型回覆統一整形為純文字。
// 上游模型的 content 欄位並不穩定：可能是字串、片段列表，
// 或是一個帶 text 欄位的物件（甚至是被字串化後的物件）。
// 所有領域解析（選擇器、綜述）都先經過這裡，業務邏輯不自己判斷格式。
func NormalizeReply(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	content := rawToString(raw)

	// 字串化的物件：看起來像帶 text 欄位的 JSON 就嘗試還原
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "{") && strings.Contains(content, "text") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(content), &m); err == nil {
			if text, ok := m["text"].(string); ok {
				content = text
			}
		}
		// 解析失敗就保留原樣
	}

	return strings.TrimSpace(content)
}

func rawToString(raw json.RawMessage) string {
	// 片段列表：逐項字串化後以空格拼接
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, " ")
	}

	// 物件：優先取 text 欄位
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err == nil {
		if text, ok := m["text"].(string); ok {
			return text
		}
		return stringify(m)
	}

	// 純字串
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		if data, err := json.Marshal(t); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", t)
	}
}
