package model

// AICallLog AI 文案调用流水
// 记录每次生成的用量与耗时，供平台侧核算成本
type AICallLog struct {
	BaseModel

	// 关联
	ShopID    int64 `gorm:"index;comment:店铺ID"`
	ProductID int64 `gorm:"index;comment:商品ID"`

	// 调用信息
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 用量统计
	InputTokens  int `gorm:"default:0;comment:输入token数"`
	OutputTokens int `gorm:"default:0;comment:输出token数"`

	// 性能与成本
	DurationMs int64   `gorm:"comment:耗时(毫秒)"`
	CostUSD    float64 `gorm:"type:decimal(10,6);default:0;comment:成本(美元)"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/failed)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)
