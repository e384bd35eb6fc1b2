package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aichef-rag/internal/core/ai"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

const imagePromptSystem = `你是一个专业的美食摄影 Prompt 工程师。请根据给定的菜名和食材标签，写一段英文的文生图 Prompt。

【硬性规则】
1. 画面中**只能**出现给定菜名和标签里真实存在的食材，**严禁**添加任何未提供的食材或配菜。
2. 风格：professional food photography, 8k resolution, cinematic lighting, appetizing。
3. 输出**仅**包含 Prompt 本身，不要任何解释。`

// ImagePipeline 封面圖生成管線。
// 生圖後端是免費限流模型：呼叫必須嚴格串行，且每次呼叫後強制冷卻，
// 不要改成並發扇出。
type ImagePipeline struct {
	chat      ChatClient
	generator ImageGenerator
	cooldown  time.Duration

	// sleep 可在測試中替換
	sleep func(time.Duration)
}

// NewImagePipeline 創建生圖管線
func NewImagePipeline(chat ChatClient, generator ImageGenerator, cooldown time.Duration) *ImagePipeline {
	return &ImagePipeline{
		chat:      chat,
		generator: generator,
		cooldown:  cooldown,
		sleep:     time.Sleep,
	}
}

// Fill 依序為缺封面的菜譜生成封面圖。
// 已有封面的項目完全跳過（不做 prompt 優化也不打生圖後端）；
// 單項生圖失敗不影響其餘項目，封面保持 nil。
func (p *ImagePipeline) Fill(ctx context.Context, items []*FormattedRecipe) {
	if p.generator == nil {
		return
	}

	for _, item := range items {
		if item.CoverImage != nil {
			continue
		}

		p.generate(ctx, item)

		// 成功或失敗都冷卻，避免連續打爆上游限流
		p.sleep(p.cooldown)
	}
}

// FillOne 為單一菜譜生成封面圖，無冷卻（單一最佳匹配路徑用）。
func (p *ImagePipeline) FillOne(ctx context.Context, item *FormattedRecipe) {
	if p.generator == nil || item.CoverImage != nil {
		return
	}
	p.generate(ctx, item)
}

func (p *ImagePipeline) generate(ctx context.Context, item *FormattedRecipe) {
	prompt := p.refinePrompt(ctx, item.RecipeName, item.Tags)

	common.LogInfo("生成封面圖",
		zap.String("菜名", item.RecipeName),
	)

	url, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		common.LogWarn("封面圖生成失敗",
			zap.Error(err),
			zap.String("菜名", item.RecipeName),
		)
		return
	}

	item.CoverImage = &url
}

// refinePrompt 以對話模型把菜名和標籤改寫成防幻覺的生圖 prompt。
// 模型未配置或呼叫失敗時退回固定模板。
func (p *ImagePipeline) refinePrompt(ctx context.Context, name string, tags []string) string {
	fallback := fmt.Sprintf(
		"Professional food photography of %s, %s, 8k resolution, cinematic lighting, appetizing",
		name, strings.Join(tags, ", "),
	)

	if p.chat == nil {
		return fallback
	}

	userPrompt := fmt.Sprintf("菜名：%s\n食材标签：%s\n\n请写出 Prompt：", name, strings.Join(tags, "、"))

	raw, err := p.chat.Chat(ctx, []ai.Message{
		ai.SystemMessage(imagePromptSystem),
		ai.UserMessage(userPrompt),
	})
	if err != nil {
		common.LogWarn("生圖 Prompt 優化失敗", zap.Error(err))
		return fallback
	}

	refined := ai.NormalizeReply(raw)
	if refined == "" {
		return fallback
	}
	return refined
}
