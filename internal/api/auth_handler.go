package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/serious-game/internal/auth"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/middleware"
)

// AuthHandler 管理员认证处理器
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login 管理员登录
// @Summary 管理员登录
// @Description 校验管理员凭证并签发令牌，令牌用于删除游戏
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body auth.Credentials true "登录信息"
// @Success 200 {object} auth.Session
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds auth.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("请求参数错误: %v", err))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, session)
}
