package user

import (
	"net/http"
	"strings"

	userStore "aichef-rag/internal/core/user"
	"aichef-rag/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultUsername = "default"

// ProfileResponse 用戶偏好響應
type ProfileResponse struct {
	Username    string                 `json:"username"`
	Preferences map[string]interface{} `json:"preferences"`
}

// UpdateProfileRequest 整體覆寫偏好
type UpdateProfileRequest struct {
	Preferences map[string]interface{} `json:"preferences" binding:"required"`
}

// Handler 用戶偏好處理程序
type Handler struct {
	store *userStore.Store
}

// NewHandler 創建用戶偏好處理程序
func NewHandler(store *userStore.Store) *Handler {
	return &Handler{store: store}
}

func username(c *gin.Context) string {
	name := strings.TrimSpace(c.GetHeader("X-Username"))
	if name == "" {
		return defaultUsername
	}
	return name
}

// HandleGetProfile 讀取偏好，首次訪問自動建立
func (h *Handler) HandleGetProfile(c *gin.Context) {
	name := username(c)

	preferences, err := h.store.GetPreferences(c.Request.Context(), name)
	if err != nil {
		common.LogError("讀取用戶偏好失敗",
			zap.Error(err),
			zap.String("username", name),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Username:    name,
		Preferences: preferences,
	})
}

// HandleUpdateProfile 覆寫偏好
func (h *Handler) HandleUpdateProfile(c *gin.Context) {
	name := username(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.store.SetPreferences(c.Request.Context(), name, req.Preferences); err != nil {
		common.LogError("寫入用戶偏好失敗",
			zap.Error(err),
			zap.String("username", name),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	common.LogInfo("用戶偏好已更新",
		zap.String("username", name),
		zap.Int("偏好條件數", len(req.Preferences)),
	)

	c.JSON(http.StatusOK, ProfileResponse{
		Username:    name,
		Preferences: req.Preferences,
	})
}
