package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bazaar_dev_v1_202608/internal/controller"
	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/service"
	"bazaar_dev_v1_202608/internal/ws"

	_ "bazaar_dev_v1_202608/docs"
)

// Deps 路由依赖
type Deps struct {
	Auth      *controller.AuthController
	User      *controller.UserController
	Shop      *controller.ShopController
	Product   *controller.ProductController
	Complaint *controller.ComplaintController
	Chat      *controller.ChatController
	Order     *controller.OrderController
	Setting   *controller.SettingController
	Upload    *controller.UploadController

	Presence *service.PresenceService

	ComplaintHub *ws.Hub
	ChatHub      *ws.Hub
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, deps Deps) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. WebSocket 接入点
	// token 走首帧，不挂 JWT 中间件
	wsGroup := r.Group("/ws")
	{
		wsGroup.GET("/complaints", ws.NewHandler(deps.ComplaintHub).Serve)
		wsGroup.GET("/shop-chats", ws.NewHandler(deps.ChatHub).Serve)
	}

	// 3. API 路由组
	api := r.Group("/api")

	// 认证后的通用链: 解析 JWT → 注入审计上下文 → 刷新在线心跳
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(), middleware.AuditContext(), middleware.TrackPresence(deps.Presence))

	// 版主及以上
	moderation := authed.Group("")
	moderation.Use(middleware.RequireModerationTier())

	// 管理员及以上
	admin := authed.Group("")
	admin.Use(middleware.RequireAdminTier())

	// 公开接口
	{
		// POST /api/register
		api.POST("/register", middleware.ActionRateLimit(middleware.ActionRegister, 0), deps.Auth.Register)
		// POST /api/login
		api.POST("/login", middleware.ActionRateLimit(middleware.ActionLogin, 0), deps.Auth.Login)
		// POST /api/refresh
		api.POST("/refresh", deps.Auth.RefreshToken)

		// GET /api/shops
		api.GET("/shops", deps.Shop.List)
		// GET /api/shops/:id
		api.GET("/shops/:id", deps.Shop.Get)

		// GET /api/products
		api.GET("/products", deps.Product.List)
		// GET /api/products/:id
		api.GET("/products/:id", deps.Product.Get)
		// GET /api/products/:id/reviews
		api.GET("/products/:id/reviews", deps.Product.ListReviews)

		// GET /api/settings/public
		api.GET("/settings/public", deps.Setting.ListPublic)
	}

	// 当前用户
	{
		// POST /api/logout
		authed.POST("/logout", deps.Auth.Logout)
		// GET /api/user
		authed.GET("/user", deps.Auth.Me)
		// PUT /api/user
		authed.PUT("/user", deps.Auth.UpdateProfile)
		// PUT /api/user/password
		authed.PUT("/user/password", deps.Auth.ChangePassword)
		// GET /api/user/capabilities
		authed.GET("/user/capabilities", deps.Auth.Capabilities)

		// POST /api/uploads/avatar
		authed.POST("/uploads/avatar", deps.Upload.UploadAvatar)
	}

	// 用户管理 (版主及以上)
	{
		moderation.GET("/users", deps.User.List)
		moderation.GET("/users/:id", deps.User.Get)
		moderation.GET("/users/:id/capabilities", deps.User.Capabilities)
		moderation.PUT("/users/:id/role", deps.User.UpdateRole)
		moderation.PUT("/users/:id/status", deps.User.UpdateStatus)
		moderation.POST("/users/:id/verify", deps.User.Verify)
		moderation.POST("/users/:id/block", deps.User.Block)
		moderation.POST("/users/:id/unblock", deps.User.Unblock)
		moderation.DELETE("/users/:id", deps.User.Delete)
	}

	// 店铺
	{
		// 开店/删店/审核/封禁是平台管理员动作
		admin.POST("/shops", deps.Shop.Create)
		admin.DELETE("/shops/:id", deps.Shop.Delete)
		admin.POST("/shops/:id/verify", deps.Shop.Verify)
		admin.POST("/shops/:id/block", deps.Shop.Block)
		admin.POST("/shops/:id/unblock", deps.Shop.Unblock)

		// 店铺资料与成员，权限在 service 层按店铺职务判
		authed.PUT("/shops/:id", deps.Shop.Update)
		authed.GET("/shops/:id/staff", deps.Shop.ListStaff)
		authed.POST("/shops/:id/staff", deps.Shop.UpsertStaff)
		authed.DELETE("/shops/:id/staff/:userId", deps.Shop.RemoveStaff)
		authed.GET("/shops/:id/staff/online", deps.Shop.StaffOnline)
		authed.GET("/shops/:id/capabilities", deps.Shop.Capabilities)
	}

	// 商品与评价
	{
		authed.POST("/products", deps.Product.Create)
		authed.PUT("/products/:id", deps.Product.Update)
		authed.DELETE("/products/:id", deps.Product.Delete)
		authed.POST("/products/:id/reviews",
			middleware.ActionRateLimit(middleware.ActionReview, 0), deps.Product.CreateReview)
		authed.POST("/products/:id/ai-copy",
			middleware.ActionRateLimit(middleware.ActionAICopy, 0), deps.Product.GenerateCopy)
		// GET /api/ai/usage
		admin.GET("/ai/usage", deps.Product.AIUsage)
	}

	// 投诉 (平台级)
	{
		authed.GET("/complaints", deps.Complaint.List)
		authed.POST("/complaints",
			middleware.ActionRateLimit(middleware.ActionComplaint, 0), deps.Complaint.Create)
		authed.GET("/complaints/:complaintId", deps.Complaint.Get)
		authed.GET("/complaints/:complaintId/messages", deps.Complaint.Messages)
		authed.POST("/complaints/:complaintId/messages", deps.Complaint.AddMessage)
		authed.POST("/complaints/:complaintId/assign", deps.Complaint.Assign)
		authed.POST("/complaints/:complaintId/resolve", deps.Complaint.Resolve)
		authed.POST("/complaints/:complaintId/reject", deps.Complaint.Reject)
	}

	// 投诉 (店铺级镜像路由，:id 为店铺 ID)
	{
		authed.GET("/shops/:id/complaints", deps.Complaint.List)
		authed.POST("/shops/:id/complaints",
			middleware.ActionRateLimit(middleware.ActionComplaint, 0), deps.Complaint.Create)
		authed.GET("/shops/:id/complaints/:complaintId", deps.Complaint.Get)
		authed.GET("/shops/:id/complaints/:complaintId/messages", deps.Complaint.Messages)
		authed.POST("/shops/:id/complaints/:complaintId/messages", deps.Complaint.AddMessage)
		authed.POST("/shops/:id/complaints/:complaintId/assign", deps.Complaint.Assign)
		authed.POST("/shops/:id/complaints/:complaintId/resolve", deps.Complaint.Resolve)
		authed.POST("/shops/:id/complaints/:complaintId/reject", deps.Complaint.Reject)
	}

	// 购物车与订单
	{
		authed.GET("/cart", deps.Order.GetCart)
		authed.POST("/cart/items", deps.Order.AddItem)
		authed.PUT("/cart/items/:productId", deps.Order.UpdateItem)
		authed.DELETE("/cart/items/:productId", deps.Order.RemoveItem)
		authed.POST("/cart/checkout",
			middleware.ActionRateLimit(middleware.ActionCheckout, 0), deps.Order.Checkout)

		authed.GET("/orders", deps.Order.List)
		authed.GET("/orders/:id", deps.Order.Get)
		authed.PUT("/orders/:id/status", deps.Order.UpdateStatus)
	}

	// 店铺会话
	{
		authed.GET("/shop-chats", deps.Chat.ListMine)
		authed.POST("/shop-chats", deps.Chat.Open)
		authed.GET("/shop-chats/:id", deps.Chat.Get)
		authed.GET("/shop-chats/:id/messages", deps.Chat.Messages)
		authed.POST("/shop-chats/:id/messages",
			middleware.ActionRateLimit(middleware.ActionChat, 0), deps.Chat.Send)
		authed.POST("/shop-chats/:id/read", deps.Chat.MarkRead)
	}

	// 站点设置 (管理员及以上，/public 除外)
	{
		admin.GET("/settings", deps.Setting.List)
		admin.GET("/settings/:key", deps.Setting.Get)
		admin.PUT("/settings/:key", deps.Setting.Put)
		admin.DELETE("/settings/:key", deps.Setting.Delete)
	}
}

// SetupRouter 创建 gin 引擎并注册全部路由
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, deps)
	return r
}
