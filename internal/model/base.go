package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditMixin 审计字段 (只记录，不参与权限判断)
type AuditMixin struct {
	CreatedBy int64 `gorm:"index" json:"created_by"` // 创建人的 UserID
	UpdatedBy int64 `gorm:"index" json:"updated_by"` // 最后修改人的 UserID
}
