package recipe

import (
	"context"
	"fmt"
	"testing"
	"time"

	"aichef-rag/internal/core/retrieval"
	"aichef-rag/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// retrieverCall 記錄一次檢索呼叫的參數
type retrieverCall struct {
	query       string
	topK        int
	preferences map[string]interface{}
}

// fakeRetriever 按 query 返回預先準備的候選
type fakeRetriever struct {
	byQuery map[string][]retrieval.CandidateRecord
	calls   []retrieverCall
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int, preferences map[string]interface{}) ([]retrieval.CandidateRecord, error) {
	f.calls = append(f.calls, retrieverCall{query: query, topK: topK, preferences: preferences})
	return f.byQuery[query], nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ImageGen.Cooldown = 10 * time.Millisecond
	cfg.Retrieval.CandidateMultiplier = 3
	cfg.Pipeline.HistoryWindow = 4
	cfg.Pipeline.SelectTopK = 6
	return cfg
}

func records(count int) []retrieval.CandidateRecord {
	out := make([]retrieval.CandidateRecord, count)
	names := []string{"番茄炒蛋", "麻婆豆腐", "清蒸鲈鱼", "红烧肉", "地三鲜", "宫保鸡丁"}
	for i := range out {
		out[i] = retrieval.CandidateRecord{
			ID:    fmt.Sprintf("r%d", i),
			Name:  names[i%len(names)],
			Tags:  []interface{}{"家常"},
			Score: 0.9 - float64(i)*0.1,
			Instructions: []interface{}{
				map[string]interface{}{"description": "備料"},
				map[string]interface{}{"description": "開火"},
			},
		}
	}
	return out
}

func TestGetRecipeListWithoutBackends(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{
		"番茄": records(5),
	}}
	svc := NewService(testConfig(), retriever, nil, nil)

	result, err := svc.GetRecipeList(context.Background(), "番茄", 3, "", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Candidates, 3)
	require.Len(t, retriever.calls, 1)
	// 召回數量 = limit * 倍數
	assert.Equal(t, 9, retriever.calls[0].topK)

	for _, item := range result.Candidates {
		assert.Contains(t, item.Message, "匹配度")
		assert.Nil(t, item.CoverImage)
		require.Len(t, item.Steps, 2)
		assert.Equal(t, 1, item.Steps[0].StepIndex)
		assert.Equal(t, 2, item.Steps[1].StepIndex)
	}

	// 第一名 score 0.9
	assert.Equal(t, "匹配度 90%", result.Candidates[0].Message)
	// 模型未配置時綜述為固定文案
	assert.Equal(t, "AI 厨师正在休息（未配置 API Key），请直接查看下方菜谱。", result.AIMessage)
}

func TestGetRecipeListNoSpiceAnnotation(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{
		"番茄": records(3),
	}}
	svc := NewService(testConfig(), retriever, nil, nil)

	result, err := svc.GetRecipeList(context.Background(), "番茄", 3, "不要辣", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	for _, item := range result.Candidates {
		assert.Contains(t, item.Message, "已为您筛选不辣的做法")
	}
}

func TestGetRecipeListSpicyTagSkipsAnnotation(t *testing.T) {
	docs := records(1)
	docs[0].Tags = []interface{}{"香辣"}
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{
		"番茄": docs,
	}}
	svc := NewService(testConfig(), retriever, nil, nil)

	result, err := svc.GetRecipeList(context.Background(), "番茄", 1, "不要辣", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotContains(t, result.Candidates[0].Message, "已为您筛选不辣的做法")
}

func TestGetRecipeListEmptyResult(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{}}
	svc := NewService(testConfig(), retriever, nil, nil)

	result, err := svc.GetRecipeList(context.Background(), "不存在的菜", 3, "", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGetRecipeListRefineFallback(t *testing.T) {
	// 優化後的詞查無結果時，回退用原始詞再搜一次（且不帶偏好）
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{
		"番茄": records(2),
	}}
	chat := &fakeChat{reply: "清淡 番茄 汤"}
	svc := NewService(testConfig(), retriever, chat, nil)

	preferences := map[string]interface{}{"diet": "vegetarian"}
	result, err := svc.GetRecipeList(context.Background(), "番茄", 2, "不要辣", preferences)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, retriever.calls, 2)
	assert.Equal(t, "清淡 番茄 汤", retriever.calls[0].query)
	assert.Equal(t, preferences, retriever.calls[0].preferences)
	assert.Equal(t, "番茄", retriever.calls[1].query)
	assert.Nil(t, retriever.calls[1].preferences)

	assert.Len(t, result.Candidates, 2)
}

func TestGetRecipeSingleBest(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{
		"下饭的菜": records(3),
	}}
	chat := &fakeChat{reply: "1 ||| 川味十足，下饭首选"}
	gen := &fakeGenerator{url: "https://img/fresh.png"}
	svc := NewService(testConfig(), retriever, chat, gen)

	item, err := svc.GetRecipe(context.Background(), "下饭的菜")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "麻婆豆腐", item.RecipeName)
	assert.Equal(t, "川味十足，下饭首选", item.Message)
	assert.Equal(t, []string{"家常"}, item.Tags)
	require.Len(t, item.Steps, 2)

	// 封面永遠現場重新生成
	require.NotNil(t, item.CoverImage)
	assert.Equal(t, "https://img/fresh.png", *item.CoverImage)
	assert.Equal(t, 1, gen.calls)

	// 單一最佳匹配按配置召回
	require.Len(t, retriever.calls, 1)
	assert.Equal(t, 6, retriever.calls[0].topK)
}

func TestGetRecipeNoMatch(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]retrieval.CandidateRecord{}}
	svc := NewService(testConfig(), retriever, nil, nil)

	item, err := svc.GetRecipe(context.Background(), "不存在的菜")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestConsultDelegation(t *testing.T) {
	retriever := &fakeRetriever{}
	svc := NewService(testConfig(), retriever, nil, nil)

	got := svc.Consult(context.Background(), "能不能不辣", "", nil)
	assert.Equal(t, "抱歉，AI 厨师目前无法连接大脑 (API Key Missing)。", got)
}
