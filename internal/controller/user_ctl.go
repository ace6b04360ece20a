package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== UserController 用户管理控制器 ====================

// UserController 平台侧用户管理，路由挂在 moderation 中间件之后
type UserController struct {
	userService *service.UserService
}

// NewUserController 创建用户管理控制器
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

func parseUserID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的用户 ID")
		return 0, false
	}
	return id, true
}

// List 用户列表
// @Summary 用户列表
// @Description 按关键词/角色/封禁/认证状态筛选
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "用户名/显示名关键词"
// @Param role query string false "角色"
// @Param blocked query bool false "封禁状态"
// @Param verified query bool false "认证状态"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.UserListResponse
// @Router /api/users [get]
func (c *UserController) List(ctx *gin.Context) {
	var req dto.UserListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.userService.List(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Get 用户详情
// @Summary 用户详情
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	user, err := c.userService.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": user,
	})
}

// Capabilities 操作者对目标用户的能力
// @Summary 查询可对目标用户执行的操作
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserCapabilities
// @Router /api/users/{id}/capabilities [get]
func (c *UserController) Capabilities(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	caps, err := c.userService.CapabilitiesFor(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": caps,
	})
}

// UpdateRole 变更角色
// @Summary 变更用户角色
// @Description 操作者与目标/新角色都要通过权限矩阵
// @Tags User (用户管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.UpdateRoleRequest true "新角色"
// @Success 200 {object} dto.UserInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	user, err := c.userService.UpdateRole(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "角色已更新",
		"data":    user,
	})
}

// UpdateStatus 更新用户标记
// @Summary 更新 premium/认证标记
// @Tags User (用户管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.UpdateStatusRequest true "标记"
// @Success 200 {object} dto.UserInfo
// @Router /api/users/{id}/status [put]
func (c *UserController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	user, err := c.userService.UpdateStatus(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    user,
	})
}

// Verify 认证用户
// @Summary 设置认证标记
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserInfo
// @Router /api/users/{id}/verify [post]
func (c *UserController) Verify(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	user, err := c.userService.Verify(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已认证",
		"data":    user,
	})
}

// Block 封禁用户
// @Summary 封禁用户
// @Description reason 必填，expires_at 留空为永久封禁
// @Tags User (用户管理)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Param request body dto.BlockUserRequest true "封禁信息"
// @Success 200 {object} dto.UserInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/users/{id}/block [post]
func (c *UserController) Block(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	var req dto.BlockUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	user, err := c.userService.Block(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已封禁",
		"data":    user,
	})
}

// Unblock 解除封禁
// @Summary 解除封禁
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserInfo
// @Router /api/users/{id}/unblock [post]
func (c *UserController) Unblock(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	user, err := c.userService.Unblock(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已解封",
		"data":    user,
	})
}

// Delete 删除用户
// @Summary 删除用户 (软删除)
// @Tags User (用户管理)
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	if err := c.userService.Delete(ctx.Request.Context(), actorID, role, id); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}
