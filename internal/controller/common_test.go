package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bazaar_dev_v1_202608/internal/middleware"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
	"bazaar_dev_v1_202608/internal/repository"
	"bazaar_dev_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试模型 ====================

// sqlite 认不得 text[]，也迁移不了带自定义连接表的 many2many，
// users/shops/shop_staffs/products 四张表用镜像结构建表，读写仍走真实模型。

type testUser struct {
	ID             int64 `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
	CreatedBy      int64
	UpdatedBy      int64
	Username       string `gorm:"uniqueIndex"`
	Password       string
	DisplayName    string
	AvatarUrl      string
	Role           string
	IsPremium      bool
	IsVerified     bool
	IsBlocked      bool
	BlockReason    string
	BlockedAt      *time.Time
	BlockExpiresAt *time.Time
	LastLoginAt    *time.Time
}

func (testUser) TableName() string { return "users" }

type testShop struct {
	ID                int64 `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
	CreatedBy         int64
	UpdatedBy         int64
	Name              string
	Description       string
	AvatarUrl         string
	OwnerID           int64
	Status            string
	IsVerified        bool
	BlockReason       string
	Rating            float64
	ReviewsCount      int
	TransactionsCount int
}

func (testShop) TableName() string { return "shops" }

type testStaff struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy int64
	UpdatedBy int64
	UserID    int64 `gorm:"index"`
	ShopID    int64 `gorm:"index"`
	Role      string
}

func (testStaff) TableName() string { return "shop_staffs" }

type testProduct struct {
	ID           int64 `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	CreatedBy    int64
	UpdatedBy    int64
	ShopID       int64 `gorm:"index"`
	Name         string
	Description  string
	AvatarUrl    string
	Price        int64
	Quantity     int
	Rating       float64
	ReviewsCount int
	// pq 数组在 sqlite 里以文本存放，空值必须是 '{}' 而非空串，否则扫描报错
	Tags string `gorm:"default:'{}'"`
}

func (testProduct) TableName() string { return "products" }

// ==================== 测试环境 ====================

func setupCtlTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&testUser{}, &testShop{}, &testStaff{}, &testProduct{},
		&model.Session{}, &model.Review{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// ctlEnv 真实 service + sqlite 的控制器测试环境
type ctlEnv struct {
	db      *gorm.DB
	auth    *AuthController
	shop    *ShopController
	product *ProductController
}

func newCtlEnv(t *testing.T) *ctlEnv {
	db := setupCtlTestDB(t)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	uow := repository.NewUnitOfWork(db)

	presence := service.NewPresenceService(nil, sessionRepo)
	authSvc := service.NewAuthService(userRepo, sessionRepo, presence)
	userSvc := service.NewUserService(userRepo, sessionRepo, presence, nil)
	shopSvc := service.NewShopService(shopRepo, userRepo, uow, presence, nil)
	productSvc := service.NewProductService(productRepo, shopRepo, uow)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, uow)
	// 空配置 = AI 不可用，对应接口应报 503
	aiSvc := service.NewAIService(&service.AIConfig{}, productRepo, shopRepo, nil)

	return &ctlEnv{
		db:      db,
		auth:    NewAuthController(authSvc, userSvc),
		shop:    NewShopController(shopSvc),
		product: NewProductController(productSvc, reviewSvc, aiSvc),
	}
}

// asUser 伪造登录态，往 Context 里塞 JWT 中间件注入的那几个键
func asUser(id int64, role permission.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, id)
		c.Set(middleware.ContextKeyUsername, "tester")
		c.Set(middleware.ContextKeyRole, string(role))
		c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string, role permission.Role) int64 {
	t.Helper()
	u := &testUser{Username: username, Password: "x", DisplayName: username, Role: string(role)}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("插入用户失败: %v", err)
	}
	return u.ID
}

func seedShop(t *testing.T, db *gorm.DB, name string, ownerID int64, status string) int64 {
	t.Helper()
	s := &testShop{Name: name, OwnerID: ownerID, Status: status}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("插入店铺失败: %v", err)
	}
	if err := db.Create(&testStaff{UserID: ownerID, ShopID: s.ID, Role: string(permission.RoleShopOwner)}).Error; err != nil {
		t.Fatalf("插入店主任职失败: %v", err)
	}
	return s.ID
}

// ==================== 请求构造辅助 ====================

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	return performRecorded(r, req)
}

func performRecorded(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// envelope 统一响应 {code, message, data}
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return e
}
