package service

import (
	"context"
	"errors"
	"time"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== UserService 用户管理服务 ====================

// UserService 用户管理（平台侧）
// 所有写操作先过 permission 包的判定，"不能改自己" 在这里排除
type UserService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	presence    *PresenceService
	notify      *NotifyService
}

// NewUserService 创建用户管理服务
func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, presence *PresenceService, notify *NotifyService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		presence:    presence,
		notify:      notify,
	}
}

// List 用户列表（审核层以上）
func (s *UserService) List(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Keyword:  req.Keyword,
		Role:     req.Role,
		Blocked:  req.Blocked,
		Verified: req.Verified,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*dto.UserInfo, 0, len(users))
	for i := range users {
		list = append(list, toUserInfo(&users[i]))
	}
	return &dto.UserListResponse{List: list, Total: total}, nil
}

// Get 用户详情
func (s *UserService) Get(ctx context.Context, id int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// loadTarget 取出操作目标并做统一的权限前置检查
func (s *UserService) loadTarget(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64) (*model.User, error) {
	if actorID == targetID {
		return nil, ErrCannotModifySelf
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	if !permission.CanModifyUser(actorRole, permission.Role(target.Role)) {
		return nil, forbiddenErr("无权操作该用户")
	}
	return target, nil
}

// UpdateRole 变更用户平台角色
func (s *UserService) UpdateRole(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64, req *dto.UpdateRoleRequest) (*dto.UserInfo, error) {
	newRole := permission.Role(req.Role)
	if !permission.Valid(newRole) {
		return nil, ErrInvalidRole
	}

	target, err := s.loadTarget(ctx, actorID, actorRole, targetID)
	if err != nil {
		return nil, err
	}
	if !permission.CanAssignRole(actorRole, newRole) {
		return nil, forbiddenErr("无权授予该角色")
	}

	target.Role = string(newRole)
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return toUserInfo(target), nil
}

// UpdateStatus 更新 premium / 认证标记
func (s *UserService) UpdateStatus(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64, req *dto.UpdateStatusRequest) (*dto.UserInfo, error) {
	target, err := s.loadTarget(ctx, actorID, actorRole, targetID)
	if err != nil {
		return nil, err
	}

	if req.IsPremium != nil {
		target.IsPremium = *req.IsPremium
	}
	if req.IsVerified != nil {
		target.IsVerified = *req.IsVerified
	}
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return toUserInfo(target), nil
}

// Verify 认证用户
func (s *UserService) Verify(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64) (*dto.UserInfo, error) {
	target, err := s.loadTarget(ctx, actorID, actorRole, targetID)
	if err != nil {
		return nil, err
	}

	target.IsVerified = true
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return toUserInfo(target), nil
}

// Block 封禁用户
// expires_at 留空为永久封禁；封禁同时关掉该用户的活跃会话和在线心跳
func (s *UserService) Block(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64, req *dto.BlockUserRequest) (*dto.UserInfo, error) {
	target, err := s.loadTarget(ctx, actorID, actorRole, targetID)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, ErrInvalidExpiry
		}
		if !t.After(time.Now()) {
			return nil, ErrInvalidExpiry
		}
		expiresAt = &t
	}

	now := time.Now()
	target.IsBlocked = true
	target.BlockReason = req.Reason
	target.BlockedAt = &now
	target.BlockExpiresAt = expiresAt
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}

	// 踢下线
	_ = s.sessionRepo.CloseByUserID(ctx, targetID)
	if s.presence != nil {
		s.presence.Clear(ctx, targetID)
	}

	if s.notify != nil {
		s.notify.Publish(EventUserBlocked, map[string]interface{}{
			"user_id":    target.ID,
			"username":   target.Username,
			"reason":     req.Reason,
			"expires_at": req.ExpiresAt,
			"blocked_by": actorID,
		})
	}
	return toUserInfo(target), nil
}

// Unblock 解除封禁
func (s *UserService) Unblock(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64) (*dto.UserInfo, error) {
	target, err := s.loadTarget(ctx, actorID, actorRole, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.ClearBlock(ctx, targetID); err != nil {
		return nil, err
	}
	target.IsBlocked = false
	target.BlockReason = ""
	target.BlockedAt = nil
	target.BlockExpiresAt = nil
	return toUserInfo(target), nil
}

// Delete 删除用户（软删除），顺带关会话
func (s *UserService) Delete(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64) error {
	if _, err := s.loadTarget(ctx, actorID, actorRole, targetID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	_ = s.sessionRepo.CloseByUserID(ctx, targetID)
	if s.presence != nil {
		s.presence.Clear(ctx, targetID)
	}
	return nil
}

// ==================== 能力查询 ====================

// SelfCapabilities 当前角色的全局能力 (前端路由/菜单按这个显隐)
func (s *UserService) SelfCapabilities(actorRole permission.Role) *dto.SelfCapabilities {
	return &dto.SelfCapabilities{
		Role:            string(actorRole),
		IsModeration:    permission.IsModerationTier(actorRole),
		IsAdmin:         permission.IsAdminTier(actorRole),
		CanCreateShops:  permission.IsAdminTier(actorRole),
		AssignableRoles: rolesToStrings(permission.AssignableRoles(actorRole)),
	}
}

// CapabilitiesFor 操作者对指定用户的能力
func (s *UserService) CapabilitiesFor(ctx context.Context, actorID int64, actorRole permission.Role, targetID int64) (*dto.UserCapabilities, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	canModify := actorID != targetID && permission.CanModifyUser(actorRole, permission.Role(target.Role))
	return &dto.UserCapabilities{
		CanModify:       canModify,
		CanBlock:        canModify,
		CanVerify:       canModify && permission.IsAdminTier(actorRole),
		CanDelete:       canModify && permission.IsAdminTier(actorRole),
		AssignableRoles: rolesToStrings(permission.AssignableRoles(actorRole)),
	}, nil
}

func rolesToStrings(roles []permission.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// ==================== 错误定义 ====================

var (
	ErrCannotModifySelf = forbiddenErr("不能对自己执行该操作")
	ErrInvalidRole      = errors.New("无效的角色")
	ErrInvalidExpiry    = errors.New("无效的封禁到期时间")
)
