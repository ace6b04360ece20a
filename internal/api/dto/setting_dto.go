package dto

import "encoding/json"

// ==================== 站点设置 ====================

// PutSettingRequest 写入设置请求
type PutSettingRequest struct {
	Value    json.RawMessage `json:"value" binding:"required"`
	IsPublic bool            `json:"is_public"`
}

// SettingInfo 设置条目
type SettingInfo struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	IsPublic bool            `json:"is_public"`
}

// ==================== 文件上传 ====================

// UploadAvatarRequest 头像上传请求 (base64)
type UploadAvatarRequest struct {
	Data string `json:"data" binding:"required"` // data URI 或纯 base64
}

// UploadResponse 上传响应
type UploadResponse struct {
	Url string `json:"url"`
}
