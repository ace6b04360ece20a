package service

import (
	"context"
	"errors"
	"fmt"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
)

// ==================== OrderService 购物车与订单服务 ====================

// OrderService 购物车与订单
// 结算按店铺拆单，扣库存、落订单、清购物车在同一事务内完成；
// 任何一件商品库存不够整单回滚
type OrderService struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
	uow         *repository.UnitOfWork
}

// NewOrderService 创建订单服务
func NewOrderService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, shopRepo repository.ShopRepository, uow *repository.UnitOfWork) *OrderService {
	return &OrderService{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shopRepo:    shopRepo,
		uow:         uow,
	}
}

// ==================== 购物车 ====================

// GetCart 购物车明细（带商品快照与库存状态）
func (s *OrderService) GetCart(ctx context.Context, actorID int64) (*dto.CartResponse, error) {
	items, err := s.cartRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CartResponse{Items: make([]*dto.CartItemInfo, 0, len(items))}
	for i := range items {
		product := items[i].Product
		if product == nil {
			// 商品已下架，条目留着但不计价
			resp.Items = append(resp.Items, &dto.CartItemInfo{
				ProductID:   items[i].ProductID,
				ProductName: "商品已下架",
				Quantity:    items[i].Quantity,
				InStock:     false,
			})
			continue
		}

		subtotal := product.Price * int64(items[i].Quantity)
		resp.Items = append(resp.Items, &dto.CartItemInfo{
			ProductID:   product.ID,
			ProductName: product.Name,
			AvatarUrl:   product.AvatarUrl,
			ShopID:      product.ShopID,
			Price:       product.Price,
			Quantity:    items[i].Quantity,
			Subtotal:    subtotal,
			InStock:     product.Quantity >= items[i].Quantity,
		})
		resp.Total += subtotal
	}
	return resp, nil
}

// AddItem 加购；已有条目合并数量
func (s *OrderService) AddItem(ctx context.Context, actorID int64, req *dto.AddCartItemRequest) (*dto.CartResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	quantity := req.Quantity
	existing, err := s.cartRepo.Get(ctx, actorID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		quantity += existing.Quantity
	}
	if product.Quantity < quantity {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	item := &model.CartItem{
		UserID:    actorID,
		ProductID: req.ProductID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, actorID)
}

// UpdateItem 改数量
func (s *OrderService) UpdateItem(ctx context.Context, actorID, productID int64, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	existing, err := s.cartRepo.Get(ctx, actorID, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCartItemNotFound
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Quantity < req.Quantity {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	existing.Quantity = req.Quantity
	if err := s.cartRepo.Upsert(ctx, existing); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, actorID)
}

// RemoveItem 移除条目
func (s *OrderService) RemoveItem(ctx context.Context, actorID, productID int64) error {
	existing, err := s.cartRepo.Get(ctx, actorID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartItemNotFound
	}
	return s.cartRepo.Remove(ctx, actorID, productID)
}

// ==================== 结算 ====================

// Checkout 购物车结算
// 按店铺分组生成订单；逐件条件扣库存 (quantity >= 需求才扣)，
// 任一失败整个事务回滚，购物车原样保留
func (s *OrderService) Checkout(ctx context.Context, actorID int64) (*dto.CheckoutResponse, error) {
	items, err := s.cartRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	// 按店铺分组，保持首次出现的顺序
	shopOrder := make([]int64, 0)
	grouped := make(map[int64][]model.CartItem)
	for i := range items {
		product := items[i].Product
		if product == nil {
			return nil, fmt.Errorf("%w: 购物车中有已下架商品", ErrProductNotFound)
		}
		if _, ok := grouped[product.ShopID]; !ok {
			shopOrder = append(shopOrder, product.ShopID)
		}
		grouped[product.ShopID] = append(grouped[product.ShopID], items[i])
	}

	var orders []*model.Order
	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		orders = orders[:0]
		for _, shopID := range shopOrder {
			shop, err := uow.Shops.GetByID(ctx, shopID)
			if err != nil {
				return err
			}
			if shop == nil {
				return ErrShopNotFound
			}
			if shop.Status != model.ShopStatusActive {
				return fmt.Errorf("%w: %s", ErrShopNotActive, shop.Name)
			}

			order := &model.Order{
				UserID: actorID,
				ShopID: shopID,
				Status: model.OrderStatusPending,
			}
			for _, item := range grouped[shopID] {
				product := item.Product

				ok, err := uow.Products.DecrementStock(ctx, product.ID, item.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}

				// 名称和单价取下单瞬间的快照
				order.Items = append(order.Items, model.OrderItem{
					ProductID: product.ID,
					Name:      product.Name,
					Price:     product.Price,
					Quantity:  item.Quantity,
				})
				order.Total += product.Price * int64(item.Quantity)
			}

			if err := uow.Orders.Create(ctx, order); err != nil {
				return err
			}
			if err := uow.Shops.IncTransactions(ctx, shopID, 1); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		return uow.Carts.Clear(ctx, actorID)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CheckoutResponse{Orders: make([]*dto.OrderInfo, 0, len(orders))}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderInfo(order))
		resp.Total += order.Total
	}
	return resp, nil
}

// ==================== 订单 ====================

// List 订单列表
// 默认看自己的订单；带 shop_id 时是店铺侧视角，要求店铺管理权
func (s *OrderService) List(ctx context.Context, actorID int64, actorRole permission.Role, req *dto.OrderListRequest) (*dto.OrderListResponse, error) {
	filter := repository.OrderFilter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if req.ShopID > 0 {
		if err := s.requireShopManageable(ctx, actorID, actorRole, req.ShopID); err != nil {
			return nil, err
		}
		filter.ShopID = req.ShopID
	} else {
		filter.UserID = actorID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.OrderInfo, 0, len(orders))
	for i := range orders {
		list = append(list, toOrderInfo(&orders[i]))
	}
	return &dto.OrderListResponse{List: list, Total: total}, nil
}

// Get 订单详情（买家本人或店铺侧）
func (s *OrderService) Get(ctx context.Context, actorID int64, actorRole permission.Role, orderID int64) (*dto.OrderInfo, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.UserID != actorID {
		if err := s.requireShopManageable(ctx, actorID, actorRole, order.ShopID); err != nil {
			return nil, err
		}
	}
	return toOrderInfo(order), nil
}

// UpdateStatus 店铺侧完结订单: PENDING -> COMPLETED / CANCELLED
func (s *OrderService) UpdateStatus(ctx context.Context, actorID int64, actorRole permission.Role, orderID int64, req *dto.UpdateOrderStatusRequest) (*dto.OrderInfo, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := s.requireShopManageable(ctx, actorID, actorRole, order.ShopID); err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderClosed
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, req.Status); err != nil {
		return nil, err
	}
	order.Status = req.Status
	return toOrderInfo(order), nil
}

// requireShopManageable 校验店铺管理权
func (s *OrderService) requireShopManageable(ctx context.Context, actorID int64, actorRole permission.Role, shopID int64) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}

	staffRole, err := s.shopRepo.GetStaffRole(ctx, shopID, actorID)
	if err != nil {
		return err
	}
	if !permission.CanManageShop(actorRole, actorID, shop.OwnerID, permission.Role(staffRole)) {
		return forbiddenErr("无权查看该店铺的订单")
	}
	return nil
}

// toOrderInfo 模型转 DTO
func toOrderInfo(order *model.Order) *dto.OrderInfo {
	info := &dto.OrderInfo{
		ID:        order.ID,
		UserID:    order.UserID,
		ShopID:    order.ShopID,
		Status:    order.Status,
		Total:     order.Total,
		Items:     make([]*dto.OrderItemInfo, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
	}
	for i := range order.Items {
		info.Items = append(info.Items, &dto.OrderItemInfo{
			ProductID: order.Items[i].ProductID,
			Name:      order.Items[i].Name,
			Price:     order.Items[i].Price,
			Quantity:  order.Items[i].Quantity,
		})
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrCartItemNotFound  = notFoundErr("购物车中没有该商品")
	ErrCartEmpty         = errors.New("购物车是空的")
	ErrInsufficientStock = errors.New("库存不足")
	ErrOrderNotFound     = notFoundErr("订单不存在")
	ErrOrderClosed       = errors.New("订单已完结")
)
