package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bazaar_dev_v1_202608/internal/middleware"
)

// 鉴权首帧的等待时间
const authWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: 上线前按站点域名收紧 Origin 校验
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// authFrame 客户端接入后的第一帧
type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ==================== Handler ====================

// Handler 把 HTTP 请求升级为 WebSocket 并完成首帧鉴权。
// 浏览器的 WebSocket API 带不了 Authorization 头，所以 token 走第一帧:
// {"type":"auth","token":"<jwt>"}
type Handler struct {
	hub *Hub
}

// NewHandler 创建接入处理器
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Serve gin 路由入口
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] %s: 升级连接失败: %v", h.hub.name, err)
		return
	}

	claims, err := waitForAuth(conn)
	if err != nil {
		writeJSON(conn, gin.H{"type": "error", "message": "认证失败"})
		conn.Close()
		return
	}

	client := newClient(h.hub, conn, claims.UserID)
	h.hub.register(client)

	// 鉴权通过后读超时交给 pong 机制
	conn.SetReadDeadline(time.Time{})

	writeJSON(conn, gin.H{"type": "connected", "user_id": claims.UserID})

	go client.writePump()
	go client.readPump()

	log.Printf("[WebSocket] %s: 用户 %d 接入 (在线 %d)", h.hub.name, claims.UserID, h.hub.Count())
}

// waitForAuth 读取并校验鉴权首帧
func waitForAuth(conn *websocket.Conn) (*middleware.UserClaims, error) {
	conn.SetReadDeadline(time.Now().Add(authWait))

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var frame authFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("解析鉴权帧失败: %v", err)
	}
	if frame.Type != "auth" {
		return nil, fmt.Errorf("首帧必须为 auth，收到 %s", frame.Type)
	}

	claims, err := middleware.ParseToken(frame.Token)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "access" {
		return nil, fmt.Errorf("token 类型错误")
	}
	return claims, nil
}

// writeJSON 在读写泵启动前直接写单帧
func writeJSON(conn *websocket.Conn, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.TextMessage, data)
}
