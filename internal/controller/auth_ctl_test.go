package controller

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/middleware"
)

// ==================== 测试辅助 ====================

// setupAuthRouter 注册/登录走公开路由，/user 挂真实 JWT 中间件
func setupAuthRouter(env *ctlEnv) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	api.POST("/register", env.auth.Register)
	api.POST("/login", env.auth.Login)
	api.POST("/refresh", env.auth.RefreshToken)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth())
	authed.GET("/user", env.auth.Me)
	authed.PUT("/user", env.auth.UpdateProfile)

	return r
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	return string(hashed)
}

// ==================== 注册 / 登录 ====================

func TestAuthController_RegisterAndLogin(t *testing.T) {
	env := newCtlEnv(t)
	router := setupAuthRouter(env)

	// 注册
	w := performRequest(router, "POST", "/api/register", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	assert.Equal(t, 0, resp.Code)

	var login dto.LoginResponse
	assert.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "alice", login.User.Username)

	// 用户名重复
	w = performRequest(router, "POST", "/api/register", map[string]string{
		"username": "alice",
		"password": "another123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 密码错误
	w = performRequest(router, "POST", "/api/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 正确登录
	w = performRequest(router, "POST", "/api/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeEnvelope(t, w).Code)
}

func TestAuthController_RegisterInvalidParams(t *testing.T) {
	env := newCtlEnv(t)
	router := setupAuthRouter(env)

	tests := []struct {
		name string
		body interface{}
	}{
		{"空请求体", nil},
		{"缺少密码", map[string]string{"username": "bob"}},
		{"密码过短", map[string]string{"username": "bob", "password": "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/api/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthController_LoginBlocked(t *testing.T) {
	env := newCtlEnv(t)
	router := setupAuthRouter(env)

	blockedAt := time.Now().Add(-time.Hour)
	env.db.Create(&testUser{
		Username:    "banned",
		Password:    hashPassword(t, "secret123"),
		Role:        "USER",
		IsBlocked:   true,
		BlockReason: "刷单",
		BlockedAt:   &blockedAt,
		// BlockExpiresAt 为空 = 永久封禁
	})

	w := performRequest(router, "POST", "/api/login", map[string]string{
		"username": "banned",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	resp := decodeEnvelope(t, w)
	assert.Equal(t, 403, resp.Code)

	// 403 响应带封禁详情
	var info dto.BlockedInfo
	assert.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "刷单", info.Reason)
	assert.Nil(t, info.BlockExpiresAt)
}

// ==================== Token ====================

func TestAuthController_RefreshToken(t *testing.T) {
	env := newCtlEnv(t)
	router := setupAuthRouter(env)

	w := performRequest(router, "POST", "/api/register", map[string]string{
		"username": "carol",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var login dto.LoginResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &login))

	// 正常刷新
	w = performRequest(router, "POST", "/api/refresh", map[string]string{
		"refresh_token": login.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var refreshed dto.RefreshTokenResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	// Access Token 不能当 Refresh Token 用
	w = performRequest(router, "POST", "/api/refresh", map[string]string{
		"refresh_token": login.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造 Token
	w = performRequest(router, "POST", "/api/refresh", map[string]string{
		"refresh_token": "not-a-token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_MeRequiresToken(t *testing.T) {
	env := newCtlEnv(t)
	router := setupAuthRouter(env)

	// 没带 Token
	w := performRequest(router, "GET", "/api/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 注册拿 Token 再访问
	w = performRequest(router, "POST", "/api/register", map[string]string{
		"username": "dave",
		"password": "secret123",
	})
	var login dto.LoginResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &login))

	req, _ := http.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w2 := performRecorded(router, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var me dto.UserInfo
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w2).Data, &me))
	assert.Equal(t, "dave", me.Username)
}
