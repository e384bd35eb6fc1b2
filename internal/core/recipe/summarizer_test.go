package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func itemsFixture() []*FormattedRecipe {
	return []*FormattedRecipe{
		{RecipeName: "番茄炒蛋", Tags: []string{"家常", "快手"}},
		{RecipeName: "麻婆豆腐", Tags: []string{"川菜"}},
	}
}

func TestSummarizeReturnsModelReply(t *testing.T) {
	chat := &fakeChat{reply: "两道家常菜都很稳妥，先试番茄炒蛋。"}
	summarizer := NewSummarizer(chat)

	got := summarizer.Summarize(context.Background(), "番茄 鸡蛋", itemsFixture())

	assert.Equal(t, "两道家常菜都很稳妥，先试番茄炒蛋。", got)
	assert.Equal(t, 1, chat.calls)
}

func TestSummarizeNilChat(t *testing.T) {
	summarizer := NewSummarizer(nil)

	got := summarizer.Summarize(context.Background(), "番茄", itemsFixture())

	assert.Equal(t, "AI 厨师正在休息（未配置 API Key），请直接查看下方菜谱。", got)
}

func TestSummarizeEmptyItems(t *testing.T) {
	chat := &fakeChat{reply: "不会被用到"}
	summarizer := NewSummarizer(chat)

	got := summarizer.Summarize(context.Background(), "番茄", nil)

	assert.Equal(t, "抱歉，没有找到相关菜谱，我也很难为您提供建议。", got)
	assert.Zero(t, chat.calls)
}

func TestSummarizeBackendError(t *testing.T) {
	chat := &fakeChat{err: errors.New("timeout")}
	summarizer := NewSummarizer(chat)

	got := summarizer.Summarize(context.Background(), "番茄", itemsFixture())

	assert.Equal(t, "基于您的食材偏好，我为您甄选了以下几道值得尝试的美味佳肴。", got)
}

func TestSummarizeEmptyReply(t *testing.T) {
	chat := &fakeChat{reply: "   "}
	summarizer := NewSummarizer(chat)

	got := summarizer.Summarize(context.Background(), "番茄", itemsFixture())

	assert.Equal(t, "基于您的食材偏好，我为您甄选了以下几道值得尝试的美味佳肴。", got)
}
