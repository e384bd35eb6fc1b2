package recipe

import (
	"context"
	"fmt"
	"strings"

	"aichef-rag/internal/core/retrieval"
	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 結果組裝管線：檢索 → AI 優選/去重 → 清洗 → 生圖 → 綜述。
// 所有依賴顯式注入，測試時以替身替換。
type Service struct {
	config     *config.Config
	retriever  retrieval.Retriever
	selector   *Selector
	refiner    *QueryRefiner
	images     *ImagePipeline
	summarizer *Summarizer
	consultant *Consultant
}

// NewService 創建食譜推薦服務。chat 與 imageGen 允許為 nil（未配置上游），
// 此時各階段走固定降級路徑。
func NewService(cfg *config.Config, retriever retrieval.Retriever, chat ChatClient, imageGen ImageGenerator) *Service {
	return &Service{
		config:     cfg,
		retriever:  retriever,
		selector:   NewSelector(chat),
		refiner:    NewQueryRefiner(chat),
		images:     NewImagePipeline(chat, imageGen, cfg.ImageGen.Cooldown),
		summarizer: NewSummarizer(chat),
		consultant: NewConsultant(chat, cfg.Pipeline.HistoryWindow),
	}
}

// GetRecipe 單一最佳匹配：擴大召回後讓模型挑一道。
// 查無結果返回 (nil, nil)，由邊界層映射為 404。
func (s *Service) GetRecipe(ctx context.Context, query string) (*FormattedRecipe, error) {
	common.LogInfo("用戶搜索", zap.String("query", query))

	candidates, err := s.retriever.Retrieve(ctx, query, s.config.Pipeline.SelectTopK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	index, message := s.selector.Select(ctx, query, candidates)
	best := candidates[index]

	common.LogInfo("AI 選中候選",
		zap.Int("index", index),
		zap.String("name", best.Name),
	)

	tags, steps := NormalizeCandidate(best)

	item := &FormattedRecipe{
		RecipeID:   best.ID,
		RecipeName: recipeName(best),
		Tags:       tags,
		Steps:      steps,
		Message:    message,
	}

	// 資料庫裡的舊封面連結不可用，一律現場重新生成。
	// TODO: 把生成的封面以內容鍵快取回存，避免同一道菜重複生圖
	s.images.FillOne(ctx, item)

	return item, nil
}

// GetRecipeList 列表搜尋：可選的搜索詞優化 → 擴大召回 → 去重 → 清洗 →
// 串行生圖 → 綜述。查無結果返回 (nil, nil)。
func (s *Service) GetRecipeList(ctx context.Context, query string, limit int, refinement string, preferences map[string]interface{}) (*ResultSet, error) {
	searchQuery := query
	if refinement != "" {
		searchQuery = s.refiner.Refine(ctx, query, refinement)
	}

	common.LogInfo("執行列表搜索",
		zap.String("search_query", searchQuery),
		zap.String("original_query", query),
		zap.Int("limit", limit),
		zap.Int("偏好條件數", len(preferences)),
	)

	topK := limit * s.config.Retrieval.CandidateMultiplier
	candidates, err := s.retriever.Retrieve(ctx, searchQuery, topK, preferences)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// 優化後的詞搜不到時回退到原始詞
	if len(candidates) == 0 && searchQuery != query {
		common.LogWarn("優化後的詞無結果，回退到原始搜索詞")
		candidates, err = s.retriever.Retrieve(ctx, query, topK, nil)
		if err != nil {
			return nil, fmt.Errorf("retrieval failed: %w", err)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	accepted := Dedupe(candidates, limit)

	items := make([]*FormattedRecipe, 0, len(accepted))
	for _, doc := range accepted {
		tags, steps := NormalizeCandidate(doc)

		items = append(items, &FormattedRecipe{
			RecipeID:   doc.ID,
			RecipeName: recipeName(doc),
			Tags:       tags,
			Steps:      steps,
			Message:    advisoryMessage(doc.Score, refinement, tags),
			// 封面強制置空：忽略資料庫壞鏈，讓下方生圖管線統一補圖
			CoverImage: nil,
		})
	}

	s.images.Fill(ctx, items)

	userIntent := query
	if refinement != "" {
		userIntent = fmt.Sprintf("%s (%s)", query, refinement)
	}

	return &ResultSet{
		Candidates: items,
		AIMessage:  s.summarizer.Summarize(ctx, userIntent, items),
	}, nil
}

// Consult 針對當前結果集的追問
func (s *Service) Consult(ctx context.Context, query, contextText string, history []ConversationTurn) string {
	return s.consultant.Consult(ctx, query, contextText, history)
}

// advisoryMessage 列表項的提示語：匹配度百分比，外加忌辣標註
func advisoryMessage(score float64, refinement string, tags []string) string {
	message := fmt.Sprintf("匹配度 %d%%", int(score*100))

	if wantsNoSpice(refinement) && !strings.Contains(strings.Join(tags, "、"), "辣") {
		message += " | 已为您筛选不辣的做法"
	}
	return message
}

func wantsNoSpice(refinement string) bool {
	if refinement == "" {
		return false
	}
	return strings.Contains(refinement, "辣") || strings.Contains(strings.ToLower(refinement), "spicy")
}

func recipeName(doc retrieval.CandidateRecord) string {
	if doc.Name == "" {
		return "未命名"
	}
	return doc.Name
}
