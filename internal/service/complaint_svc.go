package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== ComplaintService 投诉服务 ====================

// ComplaintService 投诉工单
// 平台级 (shop_id=0) 和店铺级同表同状态机:
// PENDING -> IN_PROGRESS -> RESOLVED / REJECTED，驳回可跳过受理，
// 结案后一律不可再动。每次流转追加一条 SYSTEM 沟通记录。
type ComplaintService struct {
	complaintRepo repository.ComplaintRepository
	shopRepo      repository.ShopRepository
	userRepo      repository.UserRepository
	pusher        Pusher
	notify        *NotifyService
}

// NewComplaintService 创建投诉服务
func NewComplaintService(complaintRepo repository.ComplaintRepository, shopRepo repository.ShopRepository, userRepo repository.UserRepository, pusher Pusher, notify *NotifyService) *ComplaintService {
	return &ComplaintService{
		complaintRepo: complaintRepo,
		shopRepo:      shopRepo,
		userRepo:      userRepo,
		pusher:        pusher,
		notify:        notify,
	}
}

// Create 发起投诉
// shopID 为 0 时是平台投诉；店铺投诉要求店铺存在
func (s *ComplaintService) Create(ctx context.Context, actorID, shopID int64, req *dto.CreateComplaintRequest) (*dto.ComplaintInfo, error) {
	if shopID > 0 {
		shop, err := s.shopRepo.GetByID(ctx, shopID)
		if err != nil {
			return nil, err
		}
		if shop == nil {
			return nil, ErrShopNotFound
		}
	}

	complaint := &model.Complaint{
		ShopID:      shopID,
		UserID:      actorID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.ComplaintStatusPending,
	}
	if err := s.complaintRepo.Create(ctx, complaint); err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.Publish(EventComplaintCreated, map[string]interface{}{
			"complaint_id": complaint.ID,
			"shop_id":      complaint.ShopID,
			"user_id":      complaint.UserID,
			"title":        complaint.Title,
		})
	}
	return toComplaintInfo(complaint), nil
}

// Get 投诉详情（发起人、受理人或有处理权的人）
func (s *ComplaintService) Get(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64) (*dto.ComplaintInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewable(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}
	return toComplaintInfo(complaint), nil
}

// List 投诉列表
// 平台路由: 普通用户只看到自己发起的，审核层起能看全量；
// 店铺路由 (scope 指定店铺): 需要该店的投诉处理权
func (s *ComplaintService) List(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, req *dto.ComplaintListRequest) (*dto.ComplaintListResponse, error) {
	filter := repository.ComplaintFilter{
		ShopID:   scope,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if scope != nil && *scope > 0 {
		if err := s.requireHandleable(ctx, actorID, actorRole, *scope); err != nil {
			return nil, err
		}
	} else if !permission.IsModerationTier(actorRole) {
		// 普通用户只能看自己发起的
		filter.UserID = actorID
	}

	if req.Mine {
		filter.UserID = actorID
	}
	if req.Assigned {
		filter.AssignedToID = actorID
	}

	complaints, total, err := s.complaintRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ComplaintInfo, 0, len(complaints))
	for i := range complaints {
		list = append(list, toComplaintInfo(&complaints[i]))
	}
	return &dto.ComplaintListResponse{List: list, Total: total}, nil
}

// ==================== 沟通记录 ====================

// ListMessages 沟通记录（参与方可见）
func (s *ComplaintService) ListMessages(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64) ([]*dto.ComplaintMessageInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewable(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}

	messages, err := s.complaintRepo.ListMessages(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ComplaintMessageInfo, 0, len(messages))
	for i := range messages {
		list = append(list, toComplaintMessageInfo(&messages[i]))
	}
	return list, nil
}

// AddMessage 追加沟通消息并实时推给另一方
func (s *ComplaintService) AddMessage(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64, req *dto.ComplaintMessageRequest) (*dto.ComplaintMessageInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireViewable(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}
	if isComplaintClosed(complaint.Status) {
		return nil, ErrComplaintClosed
	}

	senderType := model.SenderTypeStaff
	if actorID == complaint.UserID {
		senderType = model.SenderTypeUser
	}

	msg := &model.ComplaintMessage{
		ComplaintID: complaintID,
		SenderID:    actorID,
		SenderType:  senderType,
		Message:     req.Message,
	}
	if err := s.complaintRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	info := toComplaintMessageInfo(msg)
	s.pushToParticipants(complaint, info, actorID)
	return info, nil
}

// ==================== 状态流转 ====================

// Assign 受理投诉: PENDING -> IN_PROGRESS
// 受理人默认是操作者本人；被封禁用户不能担任受理人
func (s *ComplaintService) Assign(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64, req *dto.AssignComplaintRequest) (*dto.ComplaintInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHandleableFor(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}
	if isComplaintClosed(complaint.Status) {
		return nil, ErrComplaintClosed
	}
	if complaint.Status != model.ComplaintStatusPending {
		return nil, ErrComplaintNotPending
	}

	assigneeID := req.AssignedToID
	if assigneeID == 0 {
		assigneeID = actorID
	}
	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, ErrUserNotFound
	}
	if assignee.IsBlocked {
		return nil, ErrAssigneeBlocked
	}

	complaint.Status = model.ComplaintStatusInProgress
	complaint.AssignedToID = assigneeID
	if err := s.complaintRepo.Update(ctx, complaint); err != nil {
		return nil, err
	}
	complaint.AssignedTo = assignee

	s.appendSystemMessage(ctx, complaint, fmt.Sprintf("投诉已受理，受理人: %s", assignee.Username), actorID)

	if s.notify != nil {
		s.notify.Publish(EventComplaintAssigned, map[string]interface{}{
			"complaint_id":   complaint.ID,
			"shop_id":        complaint.ShopID,
			"assigned_to_id": assigneeID,
			"assigned_by":    actorID,
		})
	}
	return toComplaintInfo(complaint), nil
}

// Resolve 解决投诉: 仅 IN_PROGRESS 可解决，未受理的投诉解决不了
func (s *ComplaintService) Resolve(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64, req *dto.ResolveComplaintRequest) (*dto.ComplaintInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHandleableFor(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}
	if isComplaintClosed(complaint.Status) {
		return nil, ErrComplaintClosed
	}
	if complaint.Status != model.ComplaintStatusInProgress {
		return nil, ErrComplaintNotAssigned
	}

	now := time.Now()
	complaint.Status = model.ComplaintStatusResolved
	complaint.ResolvedAt = &now
	if err := s.complaintRepo.Update(ctx, complaint); err != nil {
		return nil, err
	}

	text := "投诉已解决"
	if req.Note != "" {
		text = "投诉已解决: " + req.Note
	}
	s.appendSystemMessage(ctx, complaint, text, actorID)

	if s.notify != nil {
		s.notify.Publish(EventComplaintResolved, map[string]interface{}{
			"complaint_id": complaint.ID,
			"shop_id":      complaint.ShopID,
			"resolved_by":  actorID,
		})
	}
	return toComplaintInfo(complaint), nil
}

// Reject 驳回投诉: 任何未结案状态都可驳回
func (s *ComplaintService) Reject(ctx context.Context, actorID int64, actorRole permission.Role, scope *int64, complaintID int64, req *dto.ResolveComplaintRequest) (*dto.ComplaintInfo, error) {
	complaint, err := s.loadScoped(ctx, scope, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHandleableFor(ctx, actorID, actorRole, complaint); err != nil {
		return nil, err
	}
	if isComplaintClosed(complaint.Status) {
		return nil, ErrComplaintClosed
	}

	now := time.Now()
	complaint.Status = model.ComplaintStatusRejected
	complaint.ResolvedAt = &now
	if err := s.complaintRepo.Update(ctx, complaint); err != nil {
		return nil, err
	}

	text := "投诉已驳回"
	if req.Note != "" {
		text = "投诉已驳回: " + req.Note
	}
	s.appendSystemMessage(ctx, complaint, text, actorID)

	if s.notify != nil {
		s.notify.Publish(EventComplaintRejected, map[string]interface{}{
			"complaint_id": complaint.ID,
			"shop_id":      complaint.ShopID,
			"rejected_by":  actorID,
		})
	}
	return toComplaintInfo(complaint), nil
}

// ==================== 内部方法 ====================

// loadScoped 取投诉并校验路由归属
// scope 为 nil 走平台路由不限范围；否则投诉必须属于该店铺 (0 为平台级)
func (s *ComplaintService) loadScoped(ctx context.Context, scope *int64, complaintID int64) (*model.Complaint, error) {
	complaint, err := s.complaintRepo.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	if scope != nil && complaint.ShopID != *scope {
		return nil, ErrComplaintNotFound
	}
	return complaint, nil
}

// requireViewable 发起人、受理人或有处理权的人可见
func (s *ComplaintService) requireViewable(ctx context.Context, actorID int64, actorRole permission.Role, complaint *model.Complaint) error {
	if actorID == complaint.UserID || actorID == complaint.AssignedToID {
		return nil
	}
	return s.requireHandleableFor(ctx, actorID, actorRole, complaint)
}

// requireHandleableFor 校验对这单投诉的处理权
func (s *ComplaintService) requireHandleableFor(ctx context.Context, actorID int64, actorRole permission.Role, complaint *model.Complaint) error {
	if complaint.ShopID > 0 {
		return s.requireHandleable(ctx, actorID, actorRole, complaint.ShopID)
	}
	if !permission.CanManageComplaint(actorRole, false, "") {
		return forbiddenErr("无权处理该投诉")
	}
	return nil
}

// requireHandleable 校验对某店铺投诉的处理权
func (s *ComplaintService) requireHandleable(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) error {
	staffRole, err := s.shopRepo.GetStaffRole(ctx, shopID, actorID)
	if err != nil {
		return err
	}
	if !permission.CanManageComplaint(actorRole, true, permission.Role(staffRole)) {
		return forbiddenErr("无权处理该店铺的投诉")
	}
	return nil
}

// appendSystemMessage 落一条 SYSTEM 沟通记录并推给参与方，失败只丢日志不回滚流转
func (s *ComplaintService) appendSystemMessage(ctx context.Context, complaint *model.Complaint, text string, excludeUserID int64) {
	msg := &model.ComplaintMessage{
		ComplaintID: complaint.ID,
		SenderID:    0,
		SenderType:  model.SenderTypeSystem,
		Message:     text,
	}
	if err := s.complaintRepo.AppendMessage(ctx, msg); err != nil {
		return
	}
	s.pushToParticipants(complaint, toComplaintMessageInfo(msg), excludeUserID)
}

// pushToParticipants 把消息推给发起人和受理人（排除发送者自己）
func (s *ComplaintService) pushToParticipants(complaint *model.Complaint, msg *dto.ComplaintMessageInfo, excludeUserID int64) {
	if s.pusher == nil {
		return
	}
	payload := map[string]interface{}{
		"type":         "message",
		"complaint_id": complaint.ID,
		"data":         msg,
	}
	for _, uid := range []int64{complaint.UserID, complaint.AssignedToID} {
		if uid == 0 || uid == excludeUserID {
			continue
		}
		s.pusher.SendToUser(uid, payload)
	}
}

func isComplaintClosed(status string) bool {
	return status == model.ComplaintStatusResolved || status == model.ComplaintStatusRejected
}

// ==================== 转换函数 ====================

func toComplaintInfo(complaint *model.Complaint) *dto.ComplaintInfo {
	info := &dto.ComplaintInfo{
		ID:           complaint.ID,
		ShopID:       complaint.ShopID,
		UserID:       complaint.UserID,
		Title:        complaint.Title,
		Description:  complaint.Description,
		Status:       complaint.Status,
		AssignedToID: complaint.AssignedToID,
		ResolvedAt:   complaint.ResolvedAt,
		CreatedAt:    complaint.CreatedAt,
	}
	if complaint.User != nil {
		info.Username = complaint.User.Username
	}
	if complaint.AssignedTo != nil {
		info.AssignedToName = complaint.AssignedTo.Username
	}
	return info
}

func toComplaintMessageInfo(msg *model.ComplaintMessage) *dto.ComplaintMessageInfo {
	return &dto.ComplaintMessageInfo{
		ID:          msg.ID,
		ComplaintID: msg.ComplaintID,
		SenderID:    msg.SenderID,
		SenderType:  msg.SenderType,
		Message:     msg.Message,
		CreatedAt:   msg.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrComplaintNotFound    = notFoundErr("投诉不存在")
	ErrComplaintClosed      = errors.New("投诉已结案")
	ErrComplaintNotPending  = errors.New("投诉已被受理")
	ErrComplaintNotAssigned = errors.New("投诉尚未受理，不能直接解决")
	ErrAssigneeBlocked      = errors.New("被封禁用户不能担任受理人")
)
