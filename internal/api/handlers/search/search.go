package search

import (
	"fmt"
	"net/http"
	"strings"

	"aichef-rag/internal/core/recipe"
	"aichef-rag/internal/core/user"
	"aichef-rag/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultUsername = "default"

// SearchRequest 食譜搜索請求
type SearchRequest struct {
	Query string `json:"query" binding:"required"` // 搜索詞，如「番茄炒蛋」
	// Limit 期望返回的菜譜數量，預設 3
	Limit int `json:"limit,omitempty"`
	// Refinement 口味微調說明，如「不要辣」，會觸發搜索詞優化
	Refinement string `json:"refinement,omitempty"`
}

// ConsultRequest 針對當前推薦結果的追問
type ConsultRequest struct {
	Query   string                    `json:"query" binding:"required"`
	Context string                    `json:"context,omitempty"` // 當前結果集的文字描述
	History []recipe.ConversationTurn `json:"history,omitempty"`
}

// ConsultResponse AI 顧問回覆
type ConsultResponse struct {
	Reply string `json:"reply"`
}

// Handler 搜索與顧問處理程序
type Handler struct {
	recipeService *recipe.Service
	userStore     *user.Store
}

// NewHandler 創建新的搜索處理程序。userStore 為 nil 時偏好視為空。
func NewHandler(recipeService *recipe.Service, userStore *user.Store) *Handler {
	return &Handler{
		recipeService: recipeService,
		userStore:     userStore,
	}
}

// username 解析 X-Username 標頭，空值回退為匿名用戶
func username(c *gin.Context) string {
	name := strings.TrimSpace(c.GetHeader("X-Username"))
	if name == "" {
		return defaultUsername
	}
	return name
}

// HandleSearch 列表搜索：檢索 → AI 優選 → 生圖 → 綜述
func (h *Handler) HandleSearch(c *gin.Context) {
	requestID := requestid.Get(c)
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("搜索請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 3
	}

	name := username(c)

	preferences, err := h.userStore.GetPreferences(c.Request.Context(), name)
	if err != nil {
		// 偏好讀取失敗不阻斷搜索
		common.LogWarn("讀取用戶偏好失敗，以空偏好繼續",
			zap.Error(err),
			zap.String("username", name),
		)
		preferences = map[string]interface{}{}
	}

	result, err := h.recipeService.GetRecipeList(c.Request.Context(), req.Query, req.Limit, req.Refinement, preferences)
	if err != nil {
		common.LogError("列表搜索失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("query", req.Query),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recipe search failed"})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("抱歉，暂未收录关于“%s”的菜谱，请尝试其他关键词。", req.Query),
		})
		return
	}

	common.LogInfo("列表搜索成功",
		zap.String("request_id", requestID),
		zap.String("query", req.Query),
		zap.Int("count", len(result.Candidates)),
	)

	c.JSON(http.StatusOK, result)
}

// HandleGetRecipe 單一最佳匹配：?query=番茄炒蛋
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}

	item, err := h.recipeService.GetRecipe(c.Request.Context(), query)
	if err != nil {
		common.LogError("搜索失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
			zap.String("query", query),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recipe search failed"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("抱歉，暂未收录关于“%s”的菜谱，请尝试其他关键词。", query),
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// HandleConsult 追問當前結果集
func (h *Handler) HandleConsult(c *gin.Context) {
	var req ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("顧問請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}

	reply := h.recipeService.Consult(c.Request.Context(), req.Query, req.Context, req.History)

	c.JSON(http.StatusOK, ConsultResponse{Reply: reply})
}
