package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/logger"
	"go.uber.org/zap"
)

// AbortWithError 按错误码输出统一错误响应并终止请求
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	status := appErr.HTTPStatus()
	if status >= 500 {
		logger.LogError(err, "请求处理失败",
			zap.String("path", c.FullPath()),
			zap.Int("code", int(appErr.Code)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, apperrors.NewErrorResponse(appErr, c.GetString(ctxRequestID)))
}
