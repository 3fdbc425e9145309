package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sneaker_shop/internal/config"
	"sneaker_shop/internal/model"
	"sneaker_shop/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	cfg := config.AppConfig{
		CheckoutRateLimit: 100,
		CheckoutRateWin:   time.Second,
		LoginRateLimit:    100,
		LoginRateWin:      time.Minute,
		SessionTTL:        time.Hour,
		BcryptCost:        bcrypt.MinCost, // 测试里压低成本，加速
	}
	pipeline := order.NewPipeline(db, nil)
	r := gin.New()
	Setup(r, db, nil, pipeline, cfg)
	return r, db
}

// doJSON 发送 JSON 请求，token 非空时走 Bearer。
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body = %s", w.Body.String())
	return out
}

// registerUser 通过 HTTP 注册并返回会话 token。
func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body = %s", w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	return data["token"].(string)
}

// promoteAdmin 把用户直接提为管理员（会话不变，角色每次请求从库里读）。
func promoteAdmin(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	require.NoError(t, db.Model(&model.User{}).
		Where("email = ?", email).
		UpdateColumn("role", model.RoleAdmin).Error)
}

func seedVariantHTTP(t *testing.T, db *gorm.DB, price string, stock int) model.ProductVariant {
	t.Helper()
	p := model.Product{Name: "Air Force 1 " + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	v := model.ProductVariant{
		ProductID:     p.ID,
		Size:          "EU 43",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func TestPingAndHealth(t *testing.T) {
	r, _ := setupTest(t)

	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _ := setupTest(t)

	token := registerUser(t, r, "alice@example.com")
	require.NotEmpty(t, token)

	// 重复注册
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 登录成功
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 密码错误
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// me
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["email"])

	// 匿名 me
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutEndToEnd(t *testing.T) {
	r, db := setupTest(t)
	v := seedVariantHTTP(t, db, "50.00", 5)
	token := registerUser(t, r, "alice@example.com")

	// 加购
	w := doJSON(t, r, http.MethodPost, "/api/cart", token, gin.H{
		"product_variant_id": v.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body = %s", w.Body.String())

	// 结算
	w = doJSON(t, r, http.MethodPost, "/api/orders/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, "body = %s", w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["order_no"])

	// 库存已扣、购物车已清
	var variant model.ProductVariant
	require.NoError(t, db.First(&variant, v.ID).Error)
	assert.Equal(t, 2, variant.StockQuantity)

	w = doJSON(t, r, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["data"].([]any)
	assert.Empty(t, items)

	// 购物车空了，再结算报 400
	w = doJSON(t, r, http.MethodPost, "/api/orders/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRequiresAuth(t *testing.T) {
	r, _ := setupTest(t)
	w := doJSON(t, r, http.MethodPost, "/api/orders/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutInsufficientStockHTTP(t *testing.T) {
	r, db := setupTest(t)
	v := seedVariantHTTP(t, db, "80.00", 2)
	token := registerUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/cart", token, gin.H{
		"product_variant_id": v.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 加购之后库存被别处买走
	require.NoError(t, db.Model(&model.ProductVariant{}).
		Where("id = ?", v.ID).
		UpdateColumn("stock_quantity", 1).Error)

	w = doJSON(t, r, http.MethodPost, "/api/orders/checkout", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	// 错误信息指明具体 variant
	assert.Contains(t, decodeBody(t, w)["msg"], fmt.Sprintf("variant %d", v.ID))

	// 购物车保持原样
	w = doJSON(t, r, http.MethodGet, "/api/cart", token, nil)
	items := decodeBody(t, w)["data"].([]any)
	assert.Len(t, items, 1)
}

func TestPayEndpoint(t *testing.T) {
	r, db := setupTest(t)
	v := seedVariantHTTP(t, db, "60.00", 5)
	token := registerUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/cart", token, gin.H{
		"product_variant_id": v.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/orders/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decodeBody(t, w)["data"].(map[string]any)["id"].(float64))

	// 支付（无 body，默认 card）
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body = %s", w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "paid", data["payment_status"])
	assert.Equal(t, "confirmed", data["status"])
	assert.Equal(t, "card", data["payment_method"])

	// 重复支付幂等
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", orderID), token, gin.H{"method": "paypal"})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "card", data["payment_method"])

	// 他人订单 404
	other := registerUser(t, r, "bob@example.com")
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", orderID), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_ = db
}

func TestAdminGuards(t *testing.T) {
	r, _ := setupTest(t)
	token := registerUser(t, r, "alice@example.com")

	// 普通用户 403
	w := doJSON(t, r, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 匿名 401
	w = doJSON(t, r, http.MethodGet, "/api/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOrderStatusEndpoint(t *testing.T) {
	r, db := setupTest(t)
	v := seedVariantHTTP(t, db, "60.00", 5)

	buyer := registerUser(t, r, "alice@example.com")
	w := doJSON(t, r, http.MethodPost, "/api/cart", buyer, gin.H{
		"product_variant_id": v.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/orders/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decodeBody(t, w)["data"].(map[string]any)["id"].(float64))

	admin := registerUser(t, r, "admin@example.com")
	promoteAdmin(t, db, "admin@example.com")

	path := fmt.Sprintf("/api/admin/orders/%d/status", orderID)

	// pending -> confirmed 合法
	w = doJSON(t, r, http.MethodPatch, path, admin, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, "body = %s", w.Body.String())

	// confirmed -> delivered 不合法（必须先 shipped）
	w = doJSON(t, r, http.MethodPatch, path, admin, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知状态值被参数校验拦下
	w = doJSON(t, r, http.MethodPatch, path, admin, gin.H{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogListAndFilters(t *testing.T) {
	r, db := setupTest(t)

	active := model.Product{Name: "Samba OG", IsActive: true}
	require.NoError(t, db.Create(&active).Error)
	inactive := model.Product{Name: "Retired Runner", IsActive: false}
	require.NoError(t, db.Create(&inactive).Error)

	// 公开列表只见在售商品
	w := doJSON(t, r, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, data["total"])

	// 名称模糊过滤
	w = doJSON(t, r, http.MethodGet, "/api/products?q=Samba", "", nil)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, data["total"])

	w = doJSON(t, r, http.MethodGet, "/api/products?q=nothing", "", nil)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 0, data["total"])

	// 下架商品详情 404
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/products/%d", inactive.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 管理端 inactive 过滤可见
	admin := registerUser(t, r, "admin@example.com")
	promoteAdmin(t, db, "admin@example.com")
	w = doJSON(t, r, http.MethodGet, "/api/admin/products?active=inactive", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, data["total"])
}

func TestCartUpdateAndClear(t *testing.T) {
	r, db := setupTest(t)
	v := seedVariantHTTP(t, db, "30.00", 10)
	token := registerUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/cart", token, gin.H{
		"product_variant_id": v.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 重复加购累加数量
	w = doJSON(t, r, http.MethodPost, "/api/cart", token, gin.H{
		"product_variant_id": v.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 5, item["quantity"])

	// 直接改数量
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/cart/%d", v.ID), token, gin.H{"quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	item = decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, item["quantity"])

	// 超过库存拒绝
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/cart/%d", v.ID), token, gin.H{"quantity": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 清空
	w = doJSON(t, r, http.MethodDelete, "/api/cart", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decodeBody(t, w)["data"].([]any))
}
