package service

import (
	"errors"

	"bazaar_dev_v1_202608/internal/api/dto"
)

// ==================== 错误类别 ====================

// 错误类别基底
// 控制器用 errors.Is 判断类别映射 HTTP 状态码: ErrForbidden -> 403, ErrNotFound -> 404
var (
	ErrForbidden   = errors.New("无权限操作")
	ErrNotFound    = errors.New("记录不存在")
	ErrUnavailable = errors.New("服务暂不可用")
)

// bizError 业务错误: 对外展示具体 msg，类别通过 Unwrap 暴露
type bizError struct {
	kind error
	msg  string
}

func (e *bizError) Error() string { return e.msg }
func (e *bizError) Unwrap() error { return e.kind }

func forbiddenErr(msg string) error {
	return &bizError{kind: ErrForbidden, msg: msg}
}

func notFoundErr(msg string) error {
	return &bizError{kind: ErrNotFound, msg: msg}
}

func unavailableErr(msg string) error {
	return &bizError{kind: ErrUnavailable, msg: msg}
}

// ==================== 在线推送 ====================

// Pusher 把事件推给在线客户端，由 WebSocket hub 实现
// 推送是尽力而为：对方不在线就丢弃，客户端断线后靠 REST 拉取补齐
type Pusher interface {
	SendToUser(userID int64, payload interface{}) bool
}

// ==================== 封禁错误 ====================

// BlockedError 封禁用户尝试登录时返回，携带封禁详情供控制器展示
type BlockedError struct {
	Info *dto.BlockedInfo
}

func (e *BlockedError) Error() string { return "账号已被封禁" }

func (e *BlockedError) Unwrap() error { return ErrForbidden }
