package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 記錄呼叫並返回固定 URL
type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newTestPipeline(gen ImageGenerator) (*ImagePipeline, *int) {
	p := NewImagePipeline(nil, gen, 1500*time.Millisecond)
	sleeps := 0
	p.sleep = func(d time.Duration) {
		sleeps++
	}
	return p, &sleeps
}

func TestFillGeneratesMissingCovers(t *testing.T) {
	gen := &fakeGenerator{url: "https://img/cover.png"}
	pipeline, sleeps := newTestPipeline(gen)

	items := []*FormattedRecipe{
		{RecipeName: "番茄炒蛋"},
		{RecipeName: "麻婆豆腐"},
	}

	pipeline.Fill(context.Background(), items)

	assert.Equal(t, 2, gen.calls)
	// 每次呼叫後都要冷卻
	assert.Equal(t, 2, *sleeps)
	for _, item := range items {
		require.NotNil(t, item.CoverImage)
		assert.Equal(t, "https://img/cover.png", *item.CoverImage)
	}
}

func TestFillSkipsExistingCovers(t *testing.T) {
	gen := &fakeGenerator{url: "https://img/new.png"}
	pipeline, sleeps := newTestPipeline(gen)

	existing := "https://img/already.png"
	items := []*FormattedRecipe{
		{RecipeName: "有圖的", CoverImage: &existing},
		{RecipeName: "沒圖的"},
	}

	pipeline.Fill(context.Background(), items)

	// 已有封面的項目不打後端也不冷卻
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, *sleeps)
	assert.Equal(t, "https://img/already.png", *items[0].CoverImage)
	require.NotNil(t, items[1].CoverImage)
}

func TestFillFailureLeavesNilAndContinues(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	pipeline, sleeps := newTestPipeline(gen)

	items := []*FormattedRecipe{
		{RecipeName: "一"},
		{RecipeName: "二"},
	}

	pipeline.Fill(context.Background(), items)

	assert.Equal(t, 2, gen.calls)
	// 失敗也冷卻
	assert.Equal(t, 2, *sleeps)
	assert.Nil(t, items[0].CoverImage)
	assert.Nil(t, items[1].CoverImage)
}

func TestFillNilGeneratorIsNoop(t *testing.T) {
	pipeline, sleeps := newTestPipeline(nil)

	items := []*FormattedRecipe{{RecipeName: "番茄炒蛋"}}
	pipeline.Fill(context.Background(), items)

	assert.Equal(t, 0, *sleeps)
	assert.Nil(t, items[0].CoverImage)
}

func TestFillOneNoCooldown(t *testing.T) {
	gen := &fakeGenerator{url: "https://img/one.png"}
	pipeline, sleeps := newTestPipeline(gen)

	item := &FormattedRecipe{RecipeName: "清蒸鲈鱼"}
	pipeline.FillOne(context.Background(), item)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 0, *sleeps)
	require.NotNil(t, item.CoverImage)
}

func TestRefinePromptFallbackWithoutChat(t *testing.T) {
	pipeline, _ := newTestPipeline(&fakeGenerator{})

	prompt := pipeline.refinePrompt(context.Background(), "番茄炒蛋", []string{"家常", "快手"})

	assert.Contains(t, prompt, "番茄炒蛋")
	assert.Contains(t, prompt, "food photography")
}
