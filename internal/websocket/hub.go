package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// 消息类型
const (
	// 系统消息
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeRefresh   = "refresh"
	MessageTypeError     = "error"

	// 排行榜推送
	MessageTypeLeaderboardUpdate = "leaderboard_update"
	MessageTypeGameCreated       = "game_created"
	MessageTypeGameDeleted       = "game_deleted"
	MessageTypeFootprintUpdated  = "footprint_updated"
)

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage 序列化数据并构造消息
func NewMessage(msgType string, data interface{}) (*Message, error) {
	msg := &Message{Type: msgType, Timestamp: time.Now().Unix()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return msg, nil
}

// SnapshotFunc 生成当前排行榜快照，新连接与刷新请求时调用
type SnapshotFunc func(ctx context.Context) (interface{}, error)

// ClientCounter 连接数指标
type ClientCounter interface {
	ClientConnected(delta int)
}

// Hub WebSocket连接管理中心
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	snapshot SnapshotFunc
	counter  ClientCounter
	logger   *zap.Logger
}

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// SetSnapshot 设置快照生成函数
func (h *Hub) SetSnapshot(fn SnapshotFunc) {
	h.snapshot = fn
}

// SetCounter 设置连接数指标
func (h *Hub) SetCounter(counter ClientCounter) {
	h.counter = counter
}

// Run 运行Hub，ctx 取消后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.clientsMu.Lock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
	h.clientsMu.Unlock()
}

// registerClient 注册客户端并推送快照
func (h *Hub) registerClient(ctx context.Context, client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	if h.counter != nil {
		h.counter.ClientConnected(1)
	}
	h.logger.Info("WebSocket客户端连接", zap.String("client_id", client.ID))

	if msg, err := NewMessage(MessageTypeConnected, map[string]string{"client_id": client.ID}); err == nil {
		h.sendTo(client, msg)
	}
	go h.sendSnapshot(ctx, client)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
		close(client.send)
	}
	h.clientsMu.Unlock()

	if ok {
		if h.counter != nil {
			h.counter.ClientConnected(-1)
		}
		h.logger.Info("WebSocket客户端断开", zap.String("client_id", client.ID))
	}
}

// sendSnapshot 推送当前排行榜
func (h *Hub) sendSnapshot(ctx context.Context, client *Client) {
	if h.snapshot == nil {
		return
	}
	data, err := h.snapshot(ctx)
	if err != nil {
		h.logger.Warn("生成排行榜快照失败", zap.Error(err))
		return
	}
	if msg, err := NewMessage(MessageTypeLeaderboardUpdate, data); err == nil {
		h.sendTo(client, msg)
	}
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满，丢弃消息",
				zap.String("client_id", client.ID),
				zap.String("type", message.Type))
		}
	}
}

func (h *Hub) sendTo(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
	}
}

// Publish 向所有客户端推送一条消息，不阻塞调用方
func (h *Hub) Publish(msgType string, data interface{}) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		h.logger.Error("序列化推送数据失败", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("广播队列已满，丢弃消息", zap.String("type", msgType))
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
