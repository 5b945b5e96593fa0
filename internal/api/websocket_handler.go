package api

import (
	"github.com/gin-gonic/gin"
	ws "github.com/wfunc/serious-game/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler 排行榜推送连接
type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Leaderboard 订阅排行榜变更，连接关闭前阻塞
func (h *WebSocketHandler) Leaderboard(c *gin.Context) {
	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket升级失败", zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.logger.Info("WebSocket连接建立",
		zap.String("client_id", client.ID),
		zap.String("ip", c.ClientIP()))

	client.Serve(c.Request.Context())
}
