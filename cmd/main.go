package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar_dev_v1_202608/internal/controller"
	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/repository"
	"bazaar_dev_v1_202608/internal/router"
	"bazaar_dev_v1_202608/internal/service"
	"bazaar_dev_v1_202608/internal/task"
	"bazaar_dev_v1_202608/internal/ws"
	"bazaar_dev_v1_202608/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// @title           Bazaar API
// @version         1.0
// @description     多租户店铺平台：账号、店铺、商品、订单、投诉与店铺会话。
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

func main() {
	// 1. 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 2. 初始化数据库
	db := initDatabase()

	// 3. 初始化依赖
	deps := initDependencies(db)

	// 4. 启动定时任务
	stopTasks := initTasks(deps)

	// 5. 初始化路由
	r := router.SetupRouter(deps.Router)

	// 6. 启动服务
	startServer(r, stopTasks)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Repos    *Repositories
	Services *Services
	Router   router.Deps
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Session   repository.SessionRepository
	Shop      repository.ShopRepository
	Product   repository.ProductRepository
	Review    repository.ReviewRepository
	Complaint repository.ComplaintRepository
	Cart      repository.CartRepository
	Order     repository.OrderRepository
	Chat      repository.ChatRepository
	Setting   repository.SettingRepository
	AILog     repository.AICallLogRepository
	Uow       *repository.UnitOfWork
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	User      *service.UserService
	Shop      *service.ShopService
	Product   *service.ProductService
	Review    *service.ReviewService
	Complaint *service.ComplaintService
	Chat      *service.ChatService
	Order     *service.OrderService
	Setting   *service.SettingService
	Notify    *service.NotifyService
	Presence  *service.PresenceService
	Storage   *service.StorageService
	AI        *service.AIService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
// sessions / complaint_messages / shop_chat_messages 是按月分区表，
// 建表走嵌入 SQL，不进 AutoMigrate 列表
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_URL",
		"host=localhost user=postgres password=postgres dbname=bazaar port=5432 sslmode=disable TimeZone=UTC")

	db := database.InitDB(dsn)

	if err := database.QuickInit(db, []interface{}{
		// 用户
		&model.User{},
		// 店铺
		&model.Shop{}, &model.ShopStaff{},
		// 商品
		&model.Product{}, &model.Review{},
		// 订单
		&model.CartItem{}, &model.Order{}, &model.OrderItem{},
		// 投诉 & 会话主表
		&model.Complaint{}, &model.ShopChat{},
		// 站点设置 & AI 调用流水
		&model.SiteSetting{}, &model.AICallLog{},
	}); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	// 写库时自动填充 CreatedBy / UpdatedBy
	middleware.RegisterAuditCallbacks(db)

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 基础服务 --------
	rdb := database.InitRedis()
	presence := service.NewPresenceService(rdb, repos.Session)
	notify := service.NewNotifyService(repos.Setting)

	// -------- 存储 & AI 服务 --------
	storageSvc := initStorageService()
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey:    getEnv("GEMINI_API_KEY", ""),
		TextModel: getEnv("GEMINI_TEXT_MODEL", ""),
	}, repos.Product, repos.Shop, repos.AILog)

	// -------- WebSocket 推送 --------
	complaintHub := ws.NewHub("complaints")
	chatHub := ws.NewHub("shop-chats")

	// -------- 业务服务 --------
	services := &Services{
		Notify:   notify,
		Presence: presence,
		Storage:  storageSvc,
		AI:       aiSvc,
	}

	services.Auth = service.NewAuthService(repos.User, repos.Session, presence)
	services.User = service.NewUserService(repos.User, repos.Session, presence, notify)
	services.Shop = service.NewShopService(repos.Shop, repos.User, repos.Uow, presence, notify)
	services.Product = service.NewProductService(repos.Product, repos.Shop, repos.Uow)
	services.Review = service.NewReviewService(repos.Review, repos.Product, repos.Uow)
	services.Complaint = service.NewComplaintService(repos.Complaint, repos.Shop, repos.User, complaintHub, notify)
	services.Chat = service.NewChatService(repos.Chat, repos.Shop, chatHub)
	services.Order = service.NewOrderService(repos.Cart, repos.Order, repos.Product, repos.Shop, repos.Uow)
	services.Setting = service.NewSettingService(repos.Setting)

	// -------- Controller 层 --------
	routerDeps := initControllers(services)
	routerDeps.Presence = presence
	routerDeps.ComplaintHub = complaintHub
	routerDeps.ChatHub = chatHub

	return &Dependencies{
		DB:       db,
		Redis:    rdb,
		Repos:    repos,
		Services: services,
		Router:   routerDeps,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      repository.NewUserRepository(db),
		Session:   repository.NewSessionRepository(db),
		Shop:      repository.NewShopRepository(db),
		Product:   repository.NewProductRepository(db),
		Review:    repository.NewReviewRepository(db),
		Complaint: repository.NewComplaintRepository(db),
		Cart:      repository.NewCartRepository(db),
		Order:     repository.NewOrderRepository(db),
		Chat:      repository.NewChatRepository(db),
		Setting:   repository.NewSettingRepository(db),
		AILog:     repository.NewAICallLogRepository(db),
		Uow:       repository.NewUnitOfWork(db),
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "bazaar"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storageSvc
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) router.Deps {
	return router.Deps{
		Auth:      controller.NewAuthController(svc.Auth, svc.User),
		User:      controller.NewUserController(svc.User),
		Shop:      controller.NewShopController(svc.Shop),
		Product:   controller.NewProductController(svc.Product, svc.Review, svc.AI),
		Complaint: controller.NewComplaintController(svc.Complaint),
		Chat:      controller.NewChatController(svc.Chat),
		Order:     controller.NewOrderController(svc.Order),
		Setting:   controller.NewSettingController(svc.Setting),
		Upload:    controller.NewUploadController(svc.Storage),
	}
}

// ==================== 定时任务 ====================

// initTasks 启动定时任务，返回停止函数
func initTasks(deps *Dependencies) func() {
	// 到期解封 + 空闲会话清理
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		UserRepo:    deps.Repos.User,
		SessionRepo: deps.Repos.Session,
	}, task.DefaultConfig())
	tm.Start()

	// 分区维护: 预建未来分区 + 清理过期分区
	partitionTask := database.NewPartitionTask(database.Global().GetManager())
	partitionTask.Start()

	log.Println("定时任务已启动")

	return func() {
		tm.Stop()
		partitionTask.Stop()
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, stopTasks func()) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	stopTasks()

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
