package dto

import "time"

// ==================== 购物车 ====================

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// CartItemInfo 购物车条目
type CartItemInfo struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	AvatarUrl   string `json:"avatar_url"`
	ShopID      int64  `json:"shop_id"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
	InStock     bool   `json:"in_stock"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items []*CartItemInfo `json:"items"`
	Total int64           `json:"total"`
}

// ==================== 订单 ====================

// OrderItemInfo 订单行
type OrderItemInfo struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// OrderInfo 订单信息
type OrderInfo struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	ShopID    int64            `json:"shop_id"`
	Status    string           `json:"status"`
	Total     int64            `json:"total"`
	Items     []*OrderItemInfo `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
}

// CheckoutResponse 结算响应 (按店铺拆成多个订单)
type CheckoutResponse struct {
	Orders []*OrderInfo `json:"orders"`
	Total  int64        `json:"total"`
}

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	ShopID   int64  `form:"shop_id"` // 店铺侧查询自己店铺的订单
	Status   string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	List  []*OrderInfo `json:"list"`
	Total int64        `json:"total"`
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}
