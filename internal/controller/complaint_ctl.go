package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/service"
)

// ==================== ComplaintController 投诉控制器 ====================
//
// 同一组 handler 挂在两套路由下:
//   /api/complaints/...            平台级，不限定店铺
//   /api/shops/:id/complaints/...  店铺级，只看得到该店铺的投诉
// 路由里有没有 :id 决定 scope 是否生效。

type ComplaintController struct {
	complaintService *service.ComplaintService
}

// NewComplaintController 创建投诉控制器
func NewComplaintController(complaintService *service.ComplaintService) *ComplaintController {
	return &ComplaintController{complaintService: complaintService}
}

// scope 从路由取店铺限定；平台级路由返回 nil
func (c *ComplaintController) scope(ctx *gin.Context) (*int64, bool) {
	raw := ctx.Param("id")
	if raw == "" {
		return nil, true
	}
	shopID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || shopID <= 0 {
		badRequest(ctx, "无效的店铺 ID")
		return nil, false
	}
	return &shopID, true
}

func parseComplaintID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("complaintId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "无效的投诉 ID")
		return 0, false
	}
	return id, true
}

// Create 发起投诉
// @Summary 发起投诉
// @Description 平台路由为平台级投诉；店铺路由自动挂到对应店铺
// @Tags Complaint (投诉)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateComplaintRequest true "投诉内容"
// @Success 200 {object} dto.ComplaintInfo
// @Router /api/complaints [post]
func (c *ComplaintController) Create(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	var shopID int64
	if scope != nil {
		shopID = *scope
	}

	var req dto.CreateComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, _ := actor(ctx)
	complaint, err := c.complaintService.Create(ctx.Request.Context(), actorID, shopID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "投诉已提交",
		"data":    complaint,
	})
}

// List 投诉列表
// @Summary 投诉列表
// @Description 普通用户只看到自己发起的；处理人可看全部并按受理人筛选
// @Tags Complaint (投诉)
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态" Enums(PENDING, IN_PROGRESS, RESOLVED, REJECTED)
// @Param mine query bool false "只看自己发起的"
// @Param assigned query bool false "只看分配给自己的"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ComplaintListResponse
// @Router /api/complaints [get]
func (c *ComplaintController) List(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}

	var req dto.ComplaintListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	resp, err := c.complaintService.List(ctx.Request.Context(), actorID, role, scope, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// Get 投诉详情
// @Summary 投诉详情
// @Tags Complaint (投诉)
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Success 200 {object} dto.ComplaintInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/complaints/{complaintId} [get]
func (c *ComplaintController) Get(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	id, ok := parseComplaintID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	complaint, err := c.complaintService.Get(ctx.Request.Context(), actorID, role, scope, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": complaint,
	})
}

// Messages 沟通记录
// @Summary 投诉沟通记录
// @Tags Complaint (投诉)
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Success 200 {array} dto.ComplaintMessageInfo
// @Router /api/complaints/{complaintId}/messages [get]
func (c *ComplaintController) Messages(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	id, ok := parseComplaintID(ctx)
	if !ok {
		return
	}

	actorID, role := actor(ctx)
	messages, err := c.complaintService.ListMessages(ctx.Request.Context(), actorID, role, scope, id)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": messages,
	})
}

// AddMessage 追加留言
// @Summary 投诉下追加留言
// @Description 发起人和处理人都可留言；已关闭的投诉拒绝留言
// @Tags Complaint (投诉)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Param request body dto.ComplaintMessageRequest true "留言内容"
// @Success 200 {object} dto.ComplaintMessageInfo
// @Router /api/complaints/{complaintId}/messages [post]
func (c *ComplaintController) AddMessage(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	id, ok := parseComplaintID(ctx)
	if !ok {
		return
	}

	var req dto.ComplaintMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	msg, err := c.complaintService.AddMessage(ctx.Request.Context(), actorID, role, scope, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "留言成功",
		"data":    msg,
	})
}

// Assign 受理投诉
// @Summary 受理投诉
// @Description assigned_to_id 留空表示自己受理；只能从 PENDING 受理
// @Tags Complaint (投诉)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Param request body dto.AssignComplaintRequest true "受理人"
// @Success 200 {object} dto.ComplaintInfo
// @Failure 403 {object} map[string]interface{}
// @Router /api/complaints/{complaintId}/assign [post]
func (c *ComplaintController) Assign(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	id, ok := parseComplaintID(ctx)
	if !ok {
		return
	}

	var req dto.AssignComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	complaint, err := c.complaintService.Assign(ctx.Request.Context(), actorID, role, scope, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已受理",
		"data":    complaint,
	})
}

// Resolve 解决投诉
// @Summary 标记投诉已解决
// @Tags Complaint (投诉)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Param request body dto.ResolveComplaintRequest true "附加说明"
// @Success 200 {object} dto.ComplaintInfo
// @Router /api/complaints/{complaintId}/resolve [post]
func (c *ComplaintController) Resolve(ctx *gin.Context) {
	c.close(ctx, c.complaintService.Resolve, "已解决")
}

// Reject 驳回投诉
// @Summary 驳回投诉
// @Tags Complaint (投诉)
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param complaintId path int true "投诉 ID"
// @Param request body dto.ResolveComplaintRequest true "附加说明"
// @Success 200 {object} dto.ComplaintInfo
// @Router /api/complaints/{complaintId}/reject [post]
func (c *ComplaintController) Reject(ctx *gin.Context) {
	c.close(ctx, c.complaintService.Reject, "已驳回")
}

// close Resolve/Reject 共用的收尾流程
func (c *ComplaintController) close(
	ctx *gin.Context,
	op func(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64, req *dto.ResolveComplaintRequest) (*dto.ComplaintInfo, error),
	message string,
) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	id, ok := parseComplaintID(ctx)
	if !ok {
		return
	}

	var req dto.ResolveComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "参数错误: "+err.Error())
		return
	}

	actorID, role := actor(ctx)
	complaint, err := op(ctx.Request.Context(), actorID, role, scope, id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    complaint,
	})
}
