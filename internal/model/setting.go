package model

import "gorm.io/datatypes"

// SiteSetting 站点设置 (管理后台可编辑的 KV)
// Value 存任意 JSON；IsPublic 为 true 的条目允许未登录读取
type SiteSetting struct {
	BaseModel
	AuditMixin
	Key      string         `gorm:"size:100;uniqueIndex;not null"`
	Value    datatypes.JSON `gorm:"type:jsonb"`
	IsPublic bool           `gorm:"default:false"`
}

func (SiteSetting) TableName() string {
	return "site_settings"
}
