package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== OrderController 购物车与订单控制器 ====================

type OrderController struct {
	orderService *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ==================== 购物车接口 ====================

// GetCart 查看购物车
// @Summary 查看购物车
// @Description 逐条带回当前价格与库存状态
// @Tags Order (购物车与订单)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Router /api/cart [get]
func (c *OrderController) GetCart(ctx *gin.Context) {
	actorID, _ := actor(ctx)
	cart, err := c.orderService.GetCart(ctx.Request.Context(), actorID)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": cart,
	})
}

// AddItem 加入购物车
// @Summary 加入购物车
// @Description 已在购物车则数量累加
// @Tags Order (购物车与订单)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddCartItemRequest true "商品与数量"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/cart/items [post]
func (c *OrderController) AddItem(ctx *gin.Context) {
	var req dto.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	cart, err := c.orderService.AddItem(ctx.Request.Context(), actorID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已加入购物车",
		"data":    cart,
	})
}

// UpdateItem 修改数量
// @Summary 修改购物车条目数量
// @Tags Order (购物车与订单)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path int true "商品 ID"
// @Param request body dto.UpdateCartItemRequest true "数量"
// @Success 200 {object} dto.CartResponse
// @Router /api/cart/items/{productId} [put]
func (c *OrderController) UpdateItem(ctx *gin.Context) {
	productID, err := strconv.ParseInt(ctx.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		badRequest(ctx, "无效的商品 ID")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	cart, err := c.orderService.UpdateItem(ctx.Request.Context(), actorID, productID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    cart,
	})
}

// RemoveItem 移出购物车
// @Summary 移出购物车
// @Tags Order (购物车与订单)
// @Produce json
// @Security BearerAuth
// @Param productId path int true "商品 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/cart/items/{productId} [delete]
func (c *OrderController) RemoveItem(ctx *gin.Context) {
	productID, err := strconv.ParseInt(ctx.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		badRequest(ctx, "无效的商品 ID")
		return
	}

	actorID, _ := actor(ctx)
	if err := c.orderService.RemoveItem(ctx.Request.Context(), actorID, productID); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已移除",
	})
}

// Checkout 结算
// @Summary 结算购物车
// @Description 按店铺拆单，一个事务内扣库存；任一商品库存不足则整体失败
// @Tags Order (购物车与订单)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CheckoutResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/cart/checkout [post]
func (c *OrderController) Checkout(ctx *gin.Context) {
	actorID, _ := actor(ctx)
	resp, err := c.orderService.Checkout(ctx.Request.Context(), actorID)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "下单成功",
		"data":    resp,
	})
}

// ==================== 订单接口 ====================

// List 订单列表
// @Summary 订单列表
// @Description 买家看自己的订单；带 shop_id 时按店铺查 (需店铺管理权或平台管理员)
// @Tags Order (购物车与订单)
// @Produce json
// @Security BearerAuth
// @Param shop_id query int false "店铺 ID"
// @Param status query string false "状态" Enums(PENDING, COMPLETED, CANCELLED)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.OrderListResponse
// @Router /api/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.OrderListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	resp, err := c.orderService.List(ctx.Request.Context(), actorID, role, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Get 订单详情
// @Summary 订单详情
// @Description 买家本人、订单店铺的管理者或平台管理员可看
// @Tags Order (购物车与订单)
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单 ID"
// @Success 200 {object} dto.OrderInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的订单 ID")
		return
	}

	actorID, role := actor(ctx)
	order, err := c.orderService.Get(ctx.Request.Context(), actorID, role, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": order,
	})
}

// UpdateStatus 更新订单状态
// @Summary 更新订单状态
// @Description 买家可取消待处理订单；店铺侧可完成或取消，取消回补库存
// @Tags Order (购物车与订单)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单 ID"
// @Param request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success 200 {object} dto.OrderInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/orders/{id}/status [put]
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的订单 ID")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	order, err := c.orderService.UpdateStatus(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "状态已更新",
		"data":    order,
	})
}
