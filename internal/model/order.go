package model

// Order 状态常量
const (
	OrderStatusPending   = "PENDING"   // 已下单待处理
	OrderStatusCompleted = "COMPLETED" // 已完成
	OrderStatusCancelled = "CANCELLED" // 已取消
)

// CartItem 购物车条目
// 一个用户对一个商品只有一条记录，重复加购合并数量
type CartItem struct {
	BaseModel
	UserID    int64 `gorm:"index;uniqueIndex:idx_user_product_cart;not null"`
	ProductID int64 `gorm:"index;uniqueIndex:idx_user_product_cart;not null"`
	Quantity  int   `gorm:"not null;default:1"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Order 订单
// 结算时按店铺拆单，一个订单只含同一店铺的商品
type Order struct {
	BaseModel
	UserID int64  `gorm:"index;not null"`
	ShopID int64  `gorm:"index;not null"`
	Status string `gorm:"size:20;index;default:'PENDING'"`
	Total  int64  `gorm:"not null;default:0"` // 总价 (分)

	Items []OrderItem `gorm:"foreignKey:OrderID"`
	Shop  *Shop       `gorm:"foreignKey:ShopID"`
	User  *User       `gorm:"foreignKey:UserID"`
}

// OrderItem 订单行
// 商品名和单价是下单时的快照，后续改价不影响历史订单
type OrderItem struct {
	BaseModel
	OrderID   int64  `gorm:"index;not null"`
	ProductID int64  `gorm:"index"`
	Name      string `gorm:"size:255"`
	Price     int64  `gorm:"not null"` // 下单时单价 (分)
	Quantity  int    `gorm:"not null"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}
