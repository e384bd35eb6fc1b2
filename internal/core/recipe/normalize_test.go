package recipe

import (
	"testing"

	"aichef-rag/internal/core/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want []string
	}{
		{"nil 輸入", nil, []string{}},
		{"已結構化的列表", []interface{}{"家常", "快手"}, []string{"家常", "快手"}},
		{"字串切片", []string{"川菜"}, []string{"川菜"}},
		{"JSON 編碼字串", `["下饭", "微辣"]`, []string{"下饭", "微辣"}},
		{"壞的 JSON 字串降級為空", `["下饭"`, []string{}},
		{"非法型別降級為空", 42, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, _ := NormalizeCandidate(retrieval.CandidateRecord{Tags: tt.raw})
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestNormalizeSteps(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"description": "熱鍋下油", "image_url": "https://img/1.png"},
		map[string]interface{}{"description": "下蛋翻炒", "image_url": "null"},
		map[string]interface{}{"description": "加番茄", "imgLink": "https://img/legacy.png"},
		map[string]interface{}{"description": "出鍋"},
	}

	_, steps := NormalizeCandidate(retrieval.CandidateRecord{Instructions: raw})
	require.Len(t, steps, 4)

	// step_index 從 1 起連續遞增
	for i, step := range steps {
		assert.Equal(t, i+1, step.StepIndex)
	}

	require.NotNil(t, steps[0].ImageURL)
	assert.Equal(t, "https://img/1.png", *steps[0].ImageURL)

	// 字面量 "null" 視為無圖
	assert.Nil(t, steps[1].ImageURL)

	// 舊欄位 imgLink 作為回退
	require.NotNil(t, steps[2].ImageURL)
	assert.Equal(t, "https://img/legacy.png", *steps[2].ImageURL)

	assert.Nil(t, steps[3].ImageURL)
	assert.Equal(t, "出鍋", steps[3].Description)
}

func TestNormalizeStepsEncodedString(t *testing.T) {
	encoded := `[{"description": "備料", "image_url": ""}, {"description": "開火"}]`

	_, steps := NormalizeCandidate(retrieval.CandidateRecord{Instructions: encoded})
	require.Len(t, steps, 2)
	assert.Equal(t, "備料", steps[0].Description)
	assert.Nil(t, steps[0].ImageURL)
}

func TestNormalizeStepsBadInput(t *testing.T) {
	_, steps := NormalizeCandidate(retrieval.CandidateRecord{Instructions: `not json`})
	assert.Empty(t, steps)

	_, steps = NormalizeCandidate(retrieval.CandidateRecord{Instructions: nil})
	assert.Empty(t, steps)
}
