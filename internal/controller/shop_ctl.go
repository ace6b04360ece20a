package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== ShopController 店铺控制器 ====================

type ShopController struct {
	shopService *service.ShopService
}

// NewShopController 创建店铺控制器
func NewShopController(shopService *service.ShopService) *ShopController {
	return &ShopController{shopService: shopService}
}

func parseShopID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的店铺 ID")
		return 0, false
	}
	return id, true
}

// List 店铺列表
// @Summary 店铺列表
// @Description 公开接口，按名称/状态/店主筛选
// @Tags Shop (店铺)
// @Produce json
// @Param keyword query string false "店铺名称关键词"
// @Param status query string false "状态" Enums(PENDING, ACTIVE, BLOCKED)
// @Param owner_id query int false "店主 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ShopListResponse
// @Router /api/shops [get]
func (c *ShopController) List(ctx *gin.Context) {
	var req dto.ShopListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.shopService.List(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Create 创建店铺
// @Summary 创建店铺
// @Description 管理员开店并指定店主，店主自动获得 SHOP_OWNER 职务
// @Tags Shop (店铺)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateShopRequest true "店铺信息"
// @Success 200 {object} dto.ShopInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shops [post]
func (c *ShopController) Create(ctx *gin.Context) {
	var req dto.CreateShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	shop, err := c.shopService.Create(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "创建成功",
		"data":    shop,
	})
}

// Get 店铺详情
// @Summary 店铺详情
// @Tags Shop (店铺)
// @Produce json
// @Param id path int true "店铺 ID"
// @Success 200 {object} dto.ShopInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/shops/{id} [get]
func (c *ShopController) Get(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	shop, err := c.shopService.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": shop,
	})
}

// Update 更新店铺
// @Summary 更新店铺资料
// @Description 店主/SHOP_OWNER/SHOP_MAIN 或平台管理员可改
// @Tags Shop (店铺)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Param request body dto.UpdateShopRequest true "店铺资料"
// @Success 200 {object} dto.ShopInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shops/{id} [put]
func (c *ShopController) Update(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	shop, err := c.shopService.Update(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    shop,
	})
}

// Delete 删除店铺
// @Summary 删除店铺
// @Description 连带下架商品并清掉其评价，一个事务内完成
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/shops/{id} [delete]
func (c *ShopController) Delete(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	if err := c.shopService.Delete(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// Verify 审核通过店铺
// @Summary 审核通过店铺
// @Description 店铺转为 ACTIVE 并打认证标记
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {object} dto.ShopInfo
// @Router /api/shops/{id}/verify [post]
func (c *ShopController) Verify(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	shop, err := c.shopService.Verify(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已通过审核",
		"data":    shop,
	})
}

// Block 封禁店铺
// @Summary 封禁店铺
// @Tags Shop (店铺)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Param request body dto.BlockShopRequest true "封禁原因"
// @Success 200 {object} dto.ShopInfo
// @Router /api/shops/{id}/block [post]
func (c *ShopController) Block(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	var req dto.BlockShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	shop, err := c.shopService.Block(ctx.Request.Context(), actorID, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已封禁",
		"data":    shop,
	})
}

// Unblock 解封店铺
// @Summary 解封店铺
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {object} dto.ShopInfo
// @Router /api/shops/{id}/unblock [post]
func (c *ShopController) Unblock(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	shop, err := c.shopService.Unblock(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已解封",
		"data":    shop,
	})
}

// ==================== 店铺成员 ====================

// ListStaff 成员列表
// @Summary 店铺成员列表
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {array} dto.StaffInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shops/{id}/staff [get]
func (c *ShopController) ListStaff(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	staff, err := c.shopService.ListStaff(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": staff,
	})
}

// UpsertStaff 新增或调整成员
// @Summary 新增/调整店铺成员
// @Description 已是成员则改职务，只接受店铺内职务
// @Tags Shop (店铺)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Param request body dto.UpsertStaffRequest true "成员与职务"
// @Success 200 {object} dto.StaffInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/shops/{id}/staff [post]
func (c *ShopController) UpsertStaff(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	var req dto.UpsertStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	staff, err := c.shopService.UpsertStaff(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成员已更新",
		"data":    staff,
	})
}

// RemoveStaff 移除成员
// @Summary 移除店铺成员
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Param userId path int true "成员用户 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/shops/{id}/staff/{userId} [delete]
func (c *ShopController) RemoveStaff(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(ctx.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		badRequest(ctx, "无效的用户 ID")
		return
	}

	actorID, role := actor(ctx)
	if err := c.shopService.RemoveStaff(ctx.Request.Context(), actorID, role, id, userID); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成员已移除",
	})
}

// StaffOnline 成员在线状态
// @Summary 店铺成员在线状态
// @Description 会话 + 心跳双通道判断在线
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {array} dto.StaffOnlineInfo
// @Router /api/shops/{id}/staff/online [get]
func (c *ShopController) StaffOnline(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	list, err := c.shopService.StaffOnline(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": list,
	})
}

// Capabilities 操作者对店铺的能力
// @Summary 查询可对店铺执行的操作
// @Tags Shop (店铺)
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺 ID"
// @Success 200 {object} dto.ShopCapabilities
// @Router /api/shops/{id}/capabilities [get]
func (c *ShopController) Capabilities(ctx *gin.Context) {
	id, ok := parseShopID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	caps, err := c.shopService.Capabilities(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": caps,
	})
}
