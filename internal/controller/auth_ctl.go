package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== AuthController 认证控制器 ====================

// AuthController 注册/登录与个人资料
type AuthController struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthController 创建认证控制器
func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{authService: authService, userService: userService}
}

func clientMeta(ctx *gin.Context) service.ClientMeta {
	return service.ClientMeta{
		IP:        ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
	}
}

// Register 注册
// @Summary 注册新账号
// @Description 用户名唯一，注册成功直接返回登录态
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req, clientMeta(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "注册成功",
		"data":    resp,
	})
}

// Login 登录
// @Summary 用户登录
// @Description 被封禁账号返回 403 并携带封禁详情
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} dto.BlockedInfo
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req, clientMeta(ctx))
	if err != nil {
		var blocked *service.BlockedError
		if errors.As(err, &blocked) {
			fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "登录成功",
		"data":    resp,
	})
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "刷新成功",
		"data":    resp,
	})
}

// Logout 退出登录
// @Summary 退出登录
// @Description 关闭当前活跃会话
// @Tags Auth (认证)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(ctx.Request.Context(), middleware.GetUserID(ctx)); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已退出登录",
	})
}

// Me 当前用户信息
// @Summary 获取当前用户信息
// @Tags Auth (认证)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Router /api/user [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, err := c.authService.GetProfile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": user,
	})
}

// UpdateProfile 更新个人资料
// @Summary 更新显示名/头像
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "资料"
// @Success 200 {object} dto.UserInfo
// @Router /api/user [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	user, err := c.authService.UpdateProfile(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
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

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags Auth (认证)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "新旧密码"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/user/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), middleware.GetUserID(ctx), &req); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "密码修改成功",
	})
}

// Capabilities 当前角色能力
// @Summary 当前角色的全局能力
// @Description 前端按它决定后台入口与按钮显隐
// @Tags Auth (认证)
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SelfCapabilities
// @Router /api/user/capabilities [get]
func (c *AuthController) Capabilities(ctx *gin.Context) {
	_, role := actor(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": c.userService.SelfCapabilities(role),
	})
}
