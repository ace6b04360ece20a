package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// ==================== Hub ====================

// Hub 维护单个推送域 (投诉 / 店铺会话) 的在线连接。
// 同一用户只保留最新一条连接，投递尽力而为：
// 不在线或发送缓冲已满时消息直接丢弃，客户端断线后靠 REST 拉取补齐。
type Hub struct {
	name    string
	mu      sync.RWMutex
	clients map[int64]*Client
}

// NewHub 创建推送域，name 仅用于日志
func NewHub(name string) *Hub {
	return &Hub{
		name:    name,
		clients: make(map[int64]*Client),
	}
}

// SendToUser 把 payload 序列化后推给指定用户，返回是否送入发送队列
func (h *Hub) SendToUser(userID int64, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WebSocket] %s: 序列化推送消息失败: %v", h.name, err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		log.Printf("[WebSocket] %s: 用户 %d 发送缓冲已满，消息丢弃", h.name, userID)
		return false
	}
}

// Count 当前在线连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register 登记连接，同一用户的旧连接被挤下线
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	old := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if old != nil {
		old.conn.Close()
		log.Printf("[WebSocket] %s: 用户 %d 的旧连接被新连接替换", h.name, c.userID)
	}
}

// unregister 注销连接。挤下线的旧连接此时已不在表里，只关它自己的队列。
// send 的关闭和 SendToUser 的写入都在锁内，不会写已关闭的通道。
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	close(c.send)
}
