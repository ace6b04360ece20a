package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== 统一响应 ====================

// 所有接口统一返回 {code, message, data}，成功时 code 为 0，
// 失败时 code 与 HTTP 状态一致。

// fail 把服务层错误翻译成 HTTP 响应。
// 类别用 errors.Is 匹配: 记录不存在 404，无权限 403，服务不可用 503，
// 其余都视为业务/参数错误 400。封禁错误额外带上封禁详情。
func fail(ctx *gin.Context, err error) {
	var blocked *service.BlockedError
	if errors.As(err, &blocked) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": blocked.Error(),
			"data":    blocked.Info,
		})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{"code": status, "message": err.Error()})
}

// badRequest 参数绑定/格式错误
func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": msg})
}

// actor 当前登录者的 ID 与角色 (由 JWT 中间件注入)
func actor(ctx *gin.Context) (int64, permission.Role) {
	return middleware.GetUserID(ctx), permission.Role(middleware.GetUserRole(ctx))
}
