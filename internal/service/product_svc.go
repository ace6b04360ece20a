package service

import (
	"context"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品管理
// 写操作与店铺管理权绑定 (CanManageShop)，删除会级联清评价并重算店铺评分
type ProductService struct {
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
	uow         *repository.UnitOfWork
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, shopRepo repository.ShopRepository, uow *repository.UnitOfWork) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		shopRepo:    shopRepo,
		uow:         uow,
	}
}

// Create 上架商品
func (s *ProductService) Create(ctx context.Context, actorID int64, actorRole permission.Role, req *dto.CreateProductRequest) (*dto.ProductInfo, error) {
	shop, err := s.requireShopManageable(ctx, actorID, actorRole, req.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.Status != model.ShopStatusActive {
		return nil, ErrShopNotActive
	}

	product := &model.Product{
		ShopID:      req.ShopID,
		Name:        req.Name,
		Description: req.Description,
		AvatarUrl:   req.AvatarUrl,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Tags:        req.Tags,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	product.Shop = shop
	return toProductInfo(product), nil
}

// Get 商品详情
func (s *ProductService) Get(ctx context.Context, id int64) (*dto.ProductInfo, error) {
	product, err := s.productRepo.GetByIDWithShop(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return toProductInfo(product), nil
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, req *dto.ProductListRequest) (*dto.ProductListResponse, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Keyword:  req.Keyword,
		ShopID:   req.ShopID,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		InStock:  req.InStock,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ProductInfo, 0, len(products))
	for i := range products {
		list = append(list, toProductInfo(&products[i]))
	}
	return &dto.ProductListResponse{List: list, Total: total}, nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, actorID int64, actorRole permission.Role, productID int64, req *dto.UpdateProductRequest) (*dto.ProductInfo, error) {
	product, err := s.requireProductManageable(ctx, actorID, actorRole, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.AvatarUrl != "" {
		product.AvatarUrl = req.AvatarUrl
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductInfo(product), nil
}

// Delete 下架删除商品
// 同一事务内删掉商品和它的评价，然后重算店铺聚合评分
func (s *ProductService) Delete(ctx context.Context, actorID int64, actorRole permission.Role, productID int64) error {
	product, err := s.requireProductManageable(ctx, actorID, actorRole, productID)
	if err != nil {
		return err
	}

	return s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Reviews.DeleteByProduct(ctx, productID); err != nil {
			return err
		}
		if err := uow.Products.Delete(ctx, productID); err != nil {
			return err
		}
		return recomputeShopRating(ctx, uow, product.ShopID)
	})
}

// requireShopManageable 校验店铺存在且操作者有管理权
func (s *ProductService) requireShopManageable(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	staffRole, err := s.shopRepo.GetStaffRole(ctx, shopID, actorID)
	if err != nil {
		return nil, err
	}
	if !permission.CanManageShop(actorRole, actorID, shop.OwnerID, permission.Role(staffRole)) {
		return nil, forbiddenErr("无权管理该店铺的商品")
	}
	return shop, nil
}

// requireProductManageable 取商品并校验所属店铺的管理权
func (s *ProductService) requireProductManageable(ctx context.Context, actorID int64, actorRole permission.Role, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if _, err := s.requireShopManageable(ctx, actorID, actorRole, product.ShopID); err != nil {
		return nil, err
	}
	return product, nil
}

// toProductInfo 模型转 DTO
func toProductInfo(product *model.Product) *dto.ProductInfo {
	info := &dto.ProductInfo{
		ID:           product.ID,
		ShopID:       product.ShopID,
		Name:         product.Name,
		Description:  product.Description,
		AvatarUrl:    product.AvatarUrl,
		Price:        product.Price,
		Quantity:     product.Quantity,
		Rating:       product.Rating,
		ReviewsCount: product.ReviewsCount,
		Tags:         product.Tags,
		CreatedAt:    product.CreatedAt,
	}
	if info.Tags == nil {
		info.Tags = []string{}
	}
	if product.Shop != nil {
		info.ShopName = product.Shop.Name
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrProductNotFound = notFoundErr("商品不存在")
	ErrShopNotActive   = forbiddenErr("店铺当前不可经营")
)
