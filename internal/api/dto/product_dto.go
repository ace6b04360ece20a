package dto

import "time"

// ==================== 商品 ====================

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	ShopID      int64    `json:"shop_id" binding:"required,gt=0"`
	Name        string   `json:"name" binding:"required,min=2,max=255"`
	Description string   `json:"description" binding:"omitempty,max=5000"`
	Price       int64    `json:"price" binding:"required,gt=0"` // 单价 (分)
	Quantity    int      `json:"quantity" binding:"omitempty,gte=0"`
	Tags        []string `json:"tags" binding:"omitempty,max=20"`
	AvatarUrl   string   `json:"avatar_url" binding:"omitempty,max=255"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name        string   `json:"name" binding:"omitempty,min=2,max=255"`
	Description string   `json:"description" binding:"omitempty,max=5000"`
	Price       *int64   `json:"price" binding:"omitempty,gt=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Tags        []string `json:"tags" binding:"omitempty,max=20"`
	AvatarUrl   string   `json:"avatar_url" binding:"omitempty,max=255"`
}

// ProductInfo 商品信息
type ProductInfo struct {
	ID           int64     `json:"id"`
	ShopID       int64     `json:"shop_id"`
	ShopName     string    `json:"shop_name,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	AvatarUrl    string    `json:"avatar_url"`
	Price        int64     `json:"price"`
	Quantity     int       `json:"quantity"`
	Rating       float64   `json:"rating"`
	ReviewsCount int       `json:"reviews_count"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	Keyword  string `form:"keyword"`
	ShopID   int64  `form:"shop_id"`
	MinPrice int64  `form:"min_price"`
	MaxPrice int64  `form:"max_price"`
	InStock  bool   `form:"in_stock"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ProductListResponse 商品列表响应
type ProductListResponse struct {
	List  []*ProductInfo `json:"list"`
	Total int64          `json:"total"`
}

// ==================== 评价 ====================

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// ReviewInfo 评价信息
type ReviewInfo struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewListResponse 评价列表响应
type ReviewListResponse struct {
	List  []*ReviewInfo `json:"list"`
	Total int64         `json:"total"`
}

// ==================== AI 文案 ====================

// ListingCopyRequest AI 文案生成请求
type ListingCopyRequest struct {
	StyleHint string `json:"style_hint" binding:"omitempty,max=200"` // 文案风格提示，可选
}

// ListingCopyResponse AI 文案生成响应
type ListingCopyResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
