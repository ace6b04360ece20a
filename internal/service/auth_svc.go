package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== AuthService 认证服务 ====================

// AuthService 注册、登录、会话
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	presence    *PresenceService
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, presence *PresenceService) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		presence:    presence,
	}
}

// ClientMeta 登录来源信息，写进会话记录
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Register 注册新用户，成功后直接返回登录态
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, meta ClientMeta) (*dto.LoginResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &model.User{
		Username:    req.Username,
		Password:    string(hashedPassword),
		DisplayName: displayName,
		Role:        string(permission.RoleUser),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueLogin(ctx, user, meta)
}

// Login 用户登录
// 被封禁用户返回 BlockedError (带封禁详情)；到期封禁视为已解封并顺手清理标记
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, meta ClientMeta) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 检查封禁状态
	if user.IsBlocked {
		if user.BlockExpiresAt != nil && !user.BlockExpiresAt.After(time.Now()) {
			// 封禁已到期，定时任务还没扫到，这里直接解除
			if err := s.userRepo.ClearBlock(ctx, user.ID); err != nil {
				return nil, err
			}
			user.IsBlocked = false
		} else {
			return nil, &BlockedError{Info: &dto.BlockedInfo{
				Reason:         user.BlockReason,
				BlockedAt:      user.BlockedAt,
				BlockExpiresAt: user.BlockExpiresAt,
			}}
		}
	}

	return s.issueLogin(ctx, user, meta)
}

// issueLogin 生成 Token 对并落会话
func (s *AuthService) issueLogin(ctx context.Context, user *model.User, meta ClientMeta) (*dto.LoginResponse, error) {
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &model.Session{
		UserID:       user.ID,
		StartedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
		ClientIP:     meta.IP,
		UserAgent:    meta.UserAgent,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)
	if s.presence != nil {
		s.presence.Touch(ctx, user.ID)
	}

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         toUserInfo(user),
	}, nil
}

// RefreshToken 刷新 Token
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 必须是 Refresh Token
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 确认用户仍然有效
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if user.IsBlocked {
		return nil, &BlockedError{Info: &dto.BlockedInfo{
			Reason:         user.BlockReason,
			BlockedAt:      user.BlockedAt,
			BlockExpiresAt: user.BlockExpiresAt,
		}}
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// Logout 登出：关闭全部活跃会话并清掉在线心跳
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.sessionRepo.CloseByUserID(ctx, userID); err != nil {
		return err
	}
	if s.presence != nil {
		s.presence.Clear(ctx, userID)
	}
	return nil
}

// GetProfile 获取当前用户信息
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// UpdateProfile 更新个人资料
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.AvatarUrl != "" {
		user.AvatarUrl = req.AvatarUrl
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	// 验证旧密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// toUserInfo 模型转 DTO
func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarUrl:   user.AvatarUrl,
		Role:        user.Role,
		IsPremium:   user.IsPremium,
		IsVerified:  user.IsVerified,
		IsBlocked:   user.IsBlocked,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ==================== 错误定义 ====================

var (
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidToken       = errors.New("无效的 Token")
	ErrInvalidOldPassword = errors.New("旧密码错误")
	ErrUserNotFound       = notFoundErr("用户不存在")
)
