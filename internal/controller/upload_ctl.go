package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== UploadController 上传控制器 ====================

type UploadController struct {
	storageService *service.StorageService
}

// NewUploadController 创建上传控制器
func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{storageService: storageService}
}

// UploadAvatar 上传头像
// @Summary 上传头像
// @Description multipart 传 file 字段，或 JSON 传 base64 的 data 字段；返回可访问的 URL
// @Tags Upload (上传)
// @Accept mpfd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file formData file false "图片文件"
// @Param request body dto.UploadAvatarRequest false "base64 图片数据"
// @Success 200 {object} dto.UploadResponse
// @Failure 503 {object} map[string]interface{}
// @Router /api/uploads/avatar [post]
func (c *UploadController) UploadAvatar(ctx *gin.Context) {
	if c.storageService == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": "存储服务未配置",
		})
		return
	}

	// multipart 优先，前端表单直接传文件
	if file, header, err := ctx.Request.FormFile("file"); err == nil {
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
		if err != nil {
			badRequest(ctx, "读取文件失败")
			return
		}
		if int64(len(data)) > maxAvatarSize {
			badRequest(ctx, "图片超过大小限制")
			return
		}

		url, err := c.storageService.Upload(ctx.Request.Context(), data, header.Filename)
		if err != nil {
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"code":    0,
			"message": "上传成功",
			"data":    dto.UploadResponse{Url: url},
		})
		return
	}

	var req dto.UploadAvatarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	url, err := c.storageService.SaveAvatar(ctx.Request.Context(), req.Data)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "上传成功",
		"data":    dto.UploadResponse{Url: url},
	})
}

// maxAvatarSize 头像大小上限 (5MB)
const maxAvatarSize = 5 << 20
