package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "純字串",
			raw:  `"1 ||| 番茄炒蛋最合适"`,
			want: "1 ||| 番茄炒蛋最合适",
		},
		{
			name: "字串前後空白被修剪",
			raw:  `"  推荐这道菜  "`,
			want: "推荐这道菜",
		},
		{
			name: "片段列表以空格拼接",
			raw:  `["第一段", "第二段"]`,
			want: "第一段 第二段",
		},
		{
			name: "混合型片段列表",
			raw:  `["選", 2, "號"]`,
			want: "選 2 號",
		},
		{
			name: "物件取 text 欄位",
			raw:  `{"type": "text", "text": "0 ||| 就它了"}`,
			want: "0 ||| 就它了",
		},
		{
			name: "字串化的物件也能還原 text",
			raw:  `"{\"type\": \"text\", \"text\": \"麻婆豆腐\"}"`,
			want: "麻婆豆腐",
		},
		{
			name: "解不開的類 JSON 字串原樣保留",
			raw:  `"{text: broken"`,
			want: "{text: broken",
		},
		{
			name: "空輸入",
			raw:  ``,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeReply(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeReplyListOfFragmentObjects(t *testing.T) {
	raw := json.RawMessage(`[{"type":"text","text":"hello"}]`)
	got := NormalizeReply(raw)
	// 列表分支逐項字串化，物件片段保留為 JSON 文字
	assert.Contains(t, got, "hello")
}
