package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/utils"
)

const (
	ctxUsername  = "username"
	ctxRole      = "role"
	ctxSessionID = "sessionID"
)

// TokenValidator 令牌校验能力
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*utils.AdminClaims, error)
}

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAdmin 要求管理员令牌，身份只保存在本次请求的上下文中
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			AbortWithError(c, apperrors.New(apperrors.ErrAuthentication, "缺少认证令牌"))
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !claims.IsAdmin() {
			AbortWithError(c, apperrors.New(apperrors.ErrPermissionDenied))
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxSessionID, claims.SessionID)
		c.Next()
	}
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 1. Authorization: Bearer
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. X-Access-Token
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// 3. Cookie
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}

	return ""
}

// GetUsername 从上下文获取管理员用户名
func GetUsername(c *gin.Context) (string, bool) {
	return c.GetString(ctxUsername), c.GetString(ctxUsername) != ""
}

// GetSessionID 从上下文获取会话ID
func GetSessionID(c *gin.Context) (string, bool) {
	return c.GetString(ctxSessionID), c.GetString(ctxSessionID) != ""
}

// IsAdmin 当前请求是否已通过管理员认证
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == utils.RoleAdmin
}
