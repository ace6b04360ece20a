package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bazaar_dev_v1_202608/internal/api/dto"
	"bazaar_dev_v1_202608/internal/model"
	"bazaar_dev_v1_202608/internal/permission"
)

// ==================== 测试辅助 ====================

func setupProductRouter(env *ctlEnv, actorID int64, role permission.Role) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	api.GET("/products", env.product.List)
	api.GET("/products/:id", env.product.Get)
	api.GET("/products/:id/reviews", env.product.ListReviews)

	authed := api.Group("", asUser(actorID, role))
	authed.POST("/products", env.product.Create)
	authed.PUT("/products/:id", env.product.Update)
	authed.DELETE("/products/:id", env.product.Delete)
	authed.POST("/products/:id/reviews", env.product.CreateReview)
	authed.POST("/products/:id/ai-copy", env.product.GenerateCopy)

	return r
}

func seedProduct(t *testing.T, env *ctlEnv, shopID int64, name string, price int64) int64 {
	t.Helper()
	p := &testProduct{ShopID: shopID, Name: name, Price: price, Quantity: 5, Tags: "{}"}
	if err := env.db.Create(p).Error; err != nil {
		t.Fatalf("插入商品失败: %v", err)
	}
	return p.ID
}

// ==================== CRUD ====================

func TestProductController_CreateUpdateDelete(t *testing.T) {
	env := newCtlEnv(t)
	owner := seedUser(t, env.db, "owner", permission.RoleUser)
	shopID := seedShop(t, env.db, "果铺", owner, model.ShopStatusActive)
	router := setupProductRouter(env, owner, permission.RoleUser)

	// 创建
	w := performRequest(router, "POST", "/api/products", map[string]interface{}{
		"shop_id": shopID,
		"name":    "苹果",
		"price":   500,
		"tags":    []string{"水果", "生鲜"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var created dto.ProductInfo
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
	assert.Equal(t, int64(500), created.Price)
	assert.Equal(t, []string{"水果", "生鲜"}, created.Tags)

	// 改价
	w = performRequest(router, "PUT", "/api/products/"+itoa(created.ID), map[string]interface{}{
		"price": 600,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated dto.ProductInfo
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &updated))
	assert.Equal(t, int64(600), updated.Price)

	// 删除后查不到
	w = performRequest(router, "DELETE", "/api/products/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/products/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_CreateValidation(t *testing.T) {
	env := newCtlEnv(t)
	owner := seedUser(t, env.db, "owner", permission.RoleUser)
	outsider := seedUser(t, env.db, "mallory", permission.RoleUser)
	shopID := seedShop(t, env.db, "别人店", owner, model.ShopStatusActive)

	// 缺价格
	router := setupProductRouter(env, owner, permission.RoleUser)
	w := performRequest(router, "POST", "/api/products", map[string]interface{}{
		"shop_id": shopID,
		"name":    "无价商品",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 外人上架
	router = setupProductRouter(env, outsider, permission.RoleUser)
	w = performRequest(router, "POST", "/api/products", map[string]interface{}{
		"shop_id": shopID,
		"name":    "蹭卖商品",
		"price":   100,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductController_ListFilter(t *testing.T) {
	env := newCtlEnv(t)
	owner := seedUser(t, env.db, "owner", permission.RoleUser)
	shopA := seedShop(t, env.db, "店 A", owner, model.ShopStatusActive)
	shopB := seedShop(t, env.db, "店 B", owner, model.ShopStatusActive)
	seedProduct(t, env, shopA, "苹果", 500)
	seedProduct(t, env, shopA, "香蕉", 300)
	seedProduct(t, env, shopB, "橙子", 400)
	router := setupProductRouter(env, 0, permission.RoleUser)

	// 按店过滤
	w := performRequest(router, "GET", "/api/products?shop_id="+itoa(shopA), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list dto.ProductListResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
	assert.Equal(t, int64(2), list.Total)

	// 价格区间
	w = performRequest(router, "GET", "/api/products?min_price=350&max_price=450", nil)
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, "橙子", list.List[0].Name)
}

// ==================== 评价 ====================

func TestProductController_Reviews(t *testing.T) {
	env := newCtlEnv(t)
	owner := seedUser(t, env.db, "owner", permission.RoleUser)
	buyer := seedUser(t, env.db, "buyer", permission.RoleUser)
	shopID := seedShop(t, env.db, "果铺", owner, model.ShopStatusActive)
	productID := seedProduct(t, env, shopID, "苹果", 500)
	router := setupProductRouter(env, buyer, permission.RoleUser)

	// 发表评价
	w := performRequest(router, "POST", "/api/products/"+itoa(productID)+"/reviews", map[string]interface{}{
		"rating":  4,
		"comment": "还不错",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 一人一条
	w = performRequest(router, "POST", "/api/products/"+itoa(productID)+"/reviews", map[string]interface{}{
		"rating": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 评分越界被 binding 拦下
	w = performRequest(router, "POST", "/api/products/"+itoa(productID)+"/reviews", map[string]interface{}{
		"rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 列表可见
	w = performRequest(router, "GET", "/api/products/"+itoa(productID)+"/reviews", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list dto.ReviewListResponse
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 4, list.List[0].Rating)

	// 商品评分联动更新
	var row testProduct
	env.db.First(&row, productID)
	assert.Equal(t, float64(4), row.Rating)
	assert.Equal(t, 1, row.ReviewsCount)
}

// ==================== AI 文案 ====================

func TestProductController_GenerateCopyUnavailable(t *testing.T) {
	env := newCtlEnv(t)
	owner := seedUser(t, env.db, "owner", permission.RoleUser)
	shopID := seedShop(t, env.db, "果铺", owner, model.ShopStatusActive)
	productID := seedProduct(t, env, shopID, "苹果", 500)
	router := setupProductRouter(env, owner, permission.RoleUser)

	// 未配置 API Key 时直接 503
	w := performRequest(router, "POST", "/api/products/"+itoa(productID)+"/ai-copy", map[string]string{
		"style_hint": "活泼",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decodeEnvelope(t, w)
	assert.Equal(t, 503, resp.Code)
}
