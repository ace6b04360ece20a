package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== ProductController 商品控制器 ====================

type ProductController struct {
	productService *service.ProductService
	reviewService  *service.ReviewService
	aiService      *service.AIService
}

// NewProductController 创建商品控制器
func NewProductController(productService *service.ProductService, reviewService *service.ReviewService, aiService *service.AIService) *ProductController {
	return &ProductController{
		productService: productService,
		reviewService:  reviewService,
		aiService:      aiService,
	}
}

func parseProductID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的商品 ID")
		return 0, false
	}
	return id, true
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 商品列表
// @Description 公开接口，支持关键词/店铺/价格区间/库存筛选
// @Tags Product (商品)
// @Produce json
// @Param keyword query string false "名称关键词"
// @Param shop_id query int false "店铺 ID"
// @Param min_price query int false "最低价 (分)"
// @Param max_price query int false "最高价 (分)"
// @Param in_stock query bool false "仅看有货"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResponse
// @Router /api/products [get]
func (c *ProductController) List(ctx *gin.Context) {
	var req dto.ProductListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.productService.List(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product (商品)
// @Produce json
// @Param id path int true "商品 ID"
// @Success 200 {object} dto.ProductInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	product, err := c.productService.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": product,
	})
}

// ==================== CRUD 接口 ====================

// Create 上架商品
// @Summary 上架商品
// @Description 店铺成员或平台管理员可在 ACTIVE 店铺上架
// @Tags Product (商品)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "商品信息"
// @Success 200 {object} dto.ProductInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	product, err := c.productService.Create(ctx.Request.Context(), actorID, role, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "创建成功",
		"data":    product,
	})
}

// Update 更新商品
// @Summary 更新商品
// @Tags Product (商品)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品 ID"
// @Param request body dto.UpdateProductRequest true "更新内容"
// @Success 200 {object} dto.ProductInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/products/{id} [put]
func (c *ProductController) Update(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	product, err := c.productService.Update(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    product,
	})
}

// Delete 下架商品
// @Summary 下架商品
// @Description 连带清掉该商品的评价
// @Tags Product (商品)
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (c *ProductController) Delete(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	if err := c.productService.Delete(ctx.Request.Context(), actorID, role, id); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// ==================== 评价接口 ====================

// ListReviews 商品评价列表
// @Summary 商品评价列表
// @Tags Product (商品)
// @Produce json
// @Param id path int true "商品 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ReviewListResponse
// @Router /api/products/{id}/reviews [get]
func (c *ProductController) ListReviews(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	resp, err := c.reviewService.ListByProduct(ctx.Request.Context(), id, page, pageSize)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// CreateReview 发表评价
// @Summary 发表商品评价
// @Description 需有该商品的已完成订单，每单限评一次
// @Tags Product (商品)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品 ID"
// @Param request body dto.CreateReviewRequest true "评分与评语"
// @Success 200 {object} dto.ReviewInfo
// @Router /api/products/{id}/reviews [post]
func (c *ProductController) CreateReview(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	review, err := c.reviewService.Create(ctx.Request.Context(), actorID, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "评价成功",
		"data":    review,
	})
}

// ==================== AI 文案接口 ====================

// GenerateCopy AI 生成商品文案
// @Summary AI 生成商品文案
// @Description 调用大模型为商品生成标题/描述/标签，仅店铺管理层可用
// @Tags Product (商品)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品 ID"
// @Param request body dto.ListingCopyRequest true "风格提示"
// @Success 200 {object} dto.ListingCopyResponse
// @Failure 503 {object} map[string]interface{}
// @Router /api/products/{id}/ai-copy [post]
func (c *ProductController) GenerateCopy(ctx *gin.Context) {
	id, ok := parseProductID(ctx)
	if !ok {
		return
	}

	var req dto.ListingCopyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	copyResp, err := c.aiService.GenerateListingCopy(ctx.Request.Context(), actorID, role, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": copyResp,
	})
}

// AIUsage AI 用量统计
// @Summary AI 用量统计
// @Description 按店铺或全平台统计文案生成的调用量与成本，管理员可用
// @Tags Product (商品)
// @Produce json
// @Security BearerAuth
// @Param shop_id query int false "店铺 ID，0 或缺省为全平台"
// @Param days query int false "统计天数，默认 30"
// @Success 200 {object} repository.AIUsageStats
// @Router /api/ai/usage [get]
func (c *ProductController) AIUsage(ctx *gin.Context) {
	shopID, _ := strconv.ParseInt(ctx.DefaultQuery("shop_id", "0"), 10, 64)
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "30"))

	stats, err := c.aiService.Usage(ctx.Request.Context(), shopID, days)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": stats,
	})
}
