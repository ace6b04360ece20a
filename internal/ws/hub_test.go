package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bazaar_dev_v1_202608/internal/middleware"
)

func newWSTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub("测试")
	r := gin.New()
	r.GET("/ws", NewHandler(hub).Serve)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("读帧失败: %v", err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("解析帧失败: %v", err)
	}
	return frame
}

// authAs 完成首帧鉴权并消费 connected 应答
func authAs(t *testing.T, conn *websocket.Conn, userID int64) {
	t.Helper()
	token, err := middleware.GenerateAccessToken(userID, "tester", "USER")
	if err != nil {
		t.Fatalf("签发 token 失败: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": token}); err != nil {
		t.Fatalf("发送鉴权帧失败: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "connected" {
		t.Fatalf("应答类型 = %v, want connected", frame["type"])
	}
	if int64(frame["user_id"].(float64)) != userID {
		t.Fatalf("应答 user_id = %v, want %d", frame["user_id"], userID)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

// ==================== 单元测试 ====================

func TestHub_SendToUser_Offline(t *testing.T) {
	hub := NewHub("测试")
	if hub.SendToUser(1, map[string]string{"type": "message"}) {
		t.Error("无人在线时 SendToUser 应返回 false")
	}
}

func TestHandler_AuthAndPush(t *testing.T) {
	hub, srv := newWSTestServer(t)

	conn := dialWS(t, srv)
	authAs(t, conn, 7)

	if hub.Count() != 1 {
		t.Errorf("在线数 = %d, want 1", hub.Count())
	}

	if !hub.SendToUser(7, map[string]interface{}{"type": "new_message", "chat_id": int64(3)}) {
		t.Error("在线用户 SendToUser 应返回 true")
	}
	frame := readFrame(t, conn)
	if frame["type"] != "new_message" {
		t.Errorf("帧类型 = %v, want new_message", frame["type"])
	}
	if int64(frame["chat_id"].(float64)) != 3 {
		t.Errorf("chat_id = %v, want 3", frame["chat_id"])
	}

	// 断开后注销，再推送不可达
	conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 }, "断开后在线数应归零")
	if hub.SendToUser(7, map[string]string{"type": "new_message"}) {
		t.Error("断开后 SendToUser 应返回 false")
	}
}

func TestHandler_AuthRejected(t *testing.T) {
	refreshToken, err := middleware.GenerateRefreshToken(7, "tester", "USER")
	if err != nil {
		t.Fatalf("签发 refresh token 失败: %v", err)
	}

	tests := []struct {
		name  string
		frame interface{}
		raw   string
	}{
		{name: "伪造 token", frame: map[string]string{"type": "auth", "token": "not-a-jwt"}},
		{name: "refresh token 不能用于接入", frame: map[string]string{"type": "auth", "token": refreshToken}},
		{name: "首帧不是 auth", frame: map[string]string{"type": "ping"}},
		{name: "首帧不是合法 JSON", raw: "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, srv := newWSTestServer(t)
			conn := dialWS(t, srv)

			if tt.raw != "" {
				err = conn.WriteMessage(websocket.TextMessage, []byte(tt.raw))
			} else {
				err = conn.WriteJSON(tt.frame)
			}
			if err != nil {
				t.Fatalf("发送首帧失败: %v", err)
			}

			frame := readFrame(t, conn)
			if frame["type"] != "error" {
				t.Errorf("应答类型 = %v, want error", frame["type"])
			}
			if hub.Count() != 0 {
				t.Errorf("鉴权失败不应登记连接，在线数 = %d", hub.Count())
			}
		})
	}
}

func TestHandler_NewestConnectionWins(t *testing.T) {
	hub, srv := newWSTestServer(t)

	first := dialWS(t, srv)
	authAs(t, first, 7)

	second := dialWS(t, srv)
	authAs(t, second, 7)

	// 同一用户只保留一条连接
	if hub.Count() != 1 {
		t.Errorf("在线数 = %d, want 1", hub.Count())
	}

	if !hub.SendToUser(7, map[string]string{"type": "new_message"}) {
		t.Fatal("SendToUser 应返回 true")
	}
	if frame := readFrame(t, second); frame["type"] != "new_message" {
		t.Errorf("新连接收到 %v, want new_message", frame["type"])
	}

	// 旧连接已被服务端关闭
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Error("旧连接应已被关闭")
	}

	// 新连接的注销不受旧连接退出影响
	second.Close()
	waitFor(t, func() bool { return hub.Count() == 0 }, "断开后在线数应归零")
}
