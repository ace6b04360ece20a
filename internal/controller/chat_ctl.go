package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== ChatController 店铺会话控制器 ====================

type ChatController struct {
	chatService *service.ChatService
}

// NewChatController 创建会话控制器
func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

func parseChatID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的会话 ID")
		return 0, false
	}
	return id, true
}

// ListMine 我的会话列表
// @Summary 我的会话列表
// @Description 买家看自己发起的会话；店铺成员还能看到所在店铺的会话
// @Tags Chat (店铺会话)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ChatListResponse
// @Router /api/shop-chats [get]
func (c *ChatController) ListMine(ctx *gin.Context) {
	actorID, _ := actor(ctx)
	resp, err := c.chatService.ListMine(ctx.Request.Context(), actorID)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Open 打开会话
// @Summary 打开与店铺的会话
// @Description 已有会话则直接返回，不会重复建
// @Tags Chat (店铺会话)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpenChatRequest true "目标店铺"
// @Success 200 {object} dto.ChatInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/shop-chats [post]
func (c *ChatController) Open(ctx *gin.Context) {
	var req dto.OpenChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	chat, err := c.chatService.Open(ctx.Request.Context(), actorID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": chat,
	})
}

// Get 会话详情
// @Summary 会话详情
// @Tags Chat (店铺会话)
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话 ID"
// @Success 200 {object} dto.ChatInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shop-chats/{id} [get]
func (c *ChatController) Get(ctx *gin.Context) {
	id, ok := parseChatID(ctx)
	if !ok {
		return
	}

	actorID, _ := actor(ctx)
	chat, err := c.chatService.Get(ctx.Request.Context(), actorID, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": chat,
	})
}

// Messages 会话消息
// @Summary 会话消息记录
// @Description 按时间倒序分页
// @Tags Chat (店铺会话)
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} dto.ChatMessageListResponse
// @Router /api/shop-chats/{id}/messages [get]
func (c *ChatController) Messages(ctx *gin.Context) {
	id, ok := parseChatID(ctx)
	if !ok {
		return
	}

	var req dto.ChatMessageListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	resp, err := c.chatService.Messages(ctx.Request.Context(), actorID, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Send 发送消息
// @Summary 在会话里发消息
// @Description 对方在线时经 WebSocket 实时推送
// @Tags Chat (店铺会话)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话 ID"
// @Param request body dto.ChatMessageRequest true "消息内容"
// @Success 200 {object} dto.ChatMessageInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shop-chats/{id}/messages [post]
func (c *ChatController) Send(ctx *gin.Context) {
	id, ok := parseChatID(ctx)
	if !ok {
		return
	}

	var req dto.ChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	msg, err := c.chatService.Send(ctx.Request.Context(), actorID, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "发送成功",
		"data":    msg,
	})
}

// MarkRead 标记已读
// @Summary 标记会话已读
// @Description 清掉操作者一侧的未读计数
// @Tags Chat (店铺会话)
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/shop-chats/{id}/read [post]
func (c *ChatController) MarkRead(ctx *gin.Context) {
	id, ok := parseChatID(ctx)
	if !ok {
		return
	}

	actorID, _ := actor(ctx)
	if err := c.chatService.MarkRead(ctx.Request.Context(), actorID, id); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已读",
	})
}
