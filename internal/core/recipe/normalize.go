package recipe

import (
	"encoding/json"
	"fmt"

	"aichef-rag/internal/core/retrieval"
)

// NormalizeCandidate 將檢索候選清洗成結構化的標籤與步驟。
// tags 與 instructions 可能是已結構化的列表，也可能是 JSON 編碼字串；
// 編碼字串解不開時降級為空集合，絕不報錯。
func NormalizeCandidate(record retrieval.CandidateRecord) ([]string, []RecipeStep) {
	return normalizeTags(record.Tags), normalizeSteps(record.Instructions)
}

func normalizeTags(raw interface{}) []string {
	tags := []string{}

	switch v := raw.(type) {
	case nil:
		return tags
	case []string:
		return append(tags, v...)
	case []interface{}:
		for _, item := range v {
			tags = append(tags, asString(item))
		}
		return tags
	case string:
		var decoded []interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return tags
		}
		for _, item := range decoded {
			tags = append(tags, asString(item))
		}
		return tags
	default:
		return tags
	}
}

func normalizeSteps(raw interface{}) []RecipeStep {
	var items []interface{}

	switch v := raw.(type) {
	case nil:
		return []RecipeStep{}
	case []interface{}:
		items = v
	case string:
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return []RecipeStep{}
		}
	default:
		return []RecipeStep{}
	}

	steps := make([]RecipeStep, 0, len(items))
	for idx, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			entry = map[string]interface{}{}
		}

		step := RecipeStep{
			StepIndex:   idx + 1,
			Description: asString(entry["description"]),
			ImageURL:    stepImageLink(entry),
		}
		steps = append(steps, step)
	}

	return steps
}

// stepImageLink 步驟圖連結：優先 image_url，退回舊欄位 imgLink。
// 缺失或字面量 "null" 視為無圖。
func stepImageLink(entry map[string]interface{}) *string {
	link := asString(entry["image_url"])
	if link == "" || link == "null" {
		link = asString(entry["imgLink"])
	}
	if link == "" || link == "null" {
		return nil
	}
	return &link
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
