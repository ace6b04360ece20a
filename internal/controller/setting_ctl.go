package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== SettingController 站点设置控制器 ====================

type SettingController struct {
	settingService *service.SettingService
}

// NewSettingController 创建设置控制器
func NewSettingController(settingService *service.SettingService) *SettingController {
	return &SettingController{settingService: settingService}
}

// List 全部设置
// @Summary 全部站点设置
// @Description 管理员视角，含非公开项
// @Tags Setting (站点设置)
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SettingInfo
// @Router /api/settings [get]
func (c *SettingController) List(ctx *gin.Context) {
	list, err := c.settingService.List(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": list,
	})
}

// ListPublic 公开设置
// @Summary 公开站点设置
// @Description 匿名可读，只含标记为公开的项
// @Tags Setting (站点设置)
// @Produce json
// @Success 200 {array} dto.SettingInfo
// @Router /api/settings/public [get]
func (c *SettingController) ListPublic(ctx *gin.Context) {
	list, err := c.settingService.ListPublic(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": list,
	})
}

// Get 单项设置
// @Summary 读取单项设置
// @Tags Setting (站点设置)
// @Produce json
// @Security BearerAuth
// @Param key path string true "设置键"
// @Success 200 {object} dto.SettingInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/settings/{key} [get]
func (c *SettingController) Get(ctx *gin.Context) {
	key := ctx.Param("key")
	if key == "" {
		badRequest(ctx, "缺少设置键")
		return
	}

	setting, err := c.settingService.Get(ctx.Request.Context(), key)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": setting,
	})
}

// Put 写入设置
// @Summary 写入设置
// @Description 不存在则创建；值为任意 JSON
// @Tags Setting (站点设置)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "设置键"
// @Param request body dto.PutSettingRequest true "值与公开标记"
// @Success 200 {object} dto.SettingInfo
// @Failure 400 {object} map[string]interface{}
// @Router /api/settings/{key} [put]
func (c *SettingController) Put(ctx *gin.Context) {
	key := ctx.Param("key")
	if key == "" {
		badRequest(ctx, "缺少设置键")
		return
	}

	var req dto.PutSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	setting, err := c.settingService.Put(ctx.Request.Context(), key, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "保存成功",
		"data":    setting,
	})
}

// Delete 删除设置
// @Summary 删除设置
// @Tags Setting (站点设置)
// @Produce json
// @Security BearerAuth
// @Param key path string true "设置键"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/settings/{key} [delete]
func (c *SettingController) Delete(ctx *gin.Context) {
	key := ctx.Param("key")
	if key == "" {
		badRequest(ctx, "缺少设置键")
		return
	}

	if err := c.settingService.Delete(ctx.Request.Context(), key); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}
