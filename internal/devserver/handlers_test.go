package devserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"onlineshop/internal/domain"
	orderrepo "onlineshop/internal/repository/order"
	productrepo "onlineshop/internal/repository/product"
	supplierrepo "onlineshop/internal/repository/supplier"
	userrepo "onlineshop/internal/repository/user"
)

const testSecret = "test-secret"

func testDeps() Deps {
	return Deps{
		Users:         userrepo.NewMemory(),
		Products:      productrepo.NewMemory(),
		Suppliers:     supplierrepo.NewMemory(),
		Orders:        orderrepo.NewMemory(),
		JWTSecret:     testSecret,
		TokenTTL:      time.Hour,
		ShippingCents: 250,
	}
}

func testRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, deps, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

func seedUser(t *testing.T, deps Deps, id, username, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = deps.Users.Create(context.Background(), domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := issueToken(testSecret, domain.User{ID: id, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func seedProduct(t *testing.T, deps Deps, id string, priceCents int64) {
	t.Helper()
	_, err := deps.Products.Create(context.Background(), domain.Product{
		ID:         id,
		Name:       "Product " + id,
		PriceCents: priceCents,
		Category:   "coffee",
		Stock:      100,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v body=%s", err, rec.Body.String())
		}
	}
}

func TestRegisterLoginMe(t *testing.T) {
	deps := testDeps()
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, http.MethodPost, "/auth/login", "",
		`{"username":"alice","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var auth struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	decodeData(t, rec, &auth)
	if auth.Token == "" {
		t.Fatal("login returned no token")
	}
	if auth.Role != domain.RoleUser {
		t.Fatalf("expected role USER, got %q", auth.Role)
	}

	rec = doJSON(router, http.MethodGet, "/user/me", auth.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var me domain.User
	decodeData(t, rec, &me)
	if me.Username != "alice" || me.ID != auth.UserID {
		t.Fatalf("unexpected identity: %+v", me)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	deps := testDeps()
	router := testRouter(deps)

	body := `{"username":"bob","email":"bob@example.com","password":"secret123"}`
	if rec := doJSON(router, http.MethodPost, "/auth/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}
	rec := doJSON(router, http.MethodPost, "/auth/register", "", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("expected failure envelope: %s", rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	deps := testDeps()
	seedUser(t, deps, "u1", "carol", domain.RoleUser)
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/auth/login", "",
		`{"username":"carol","password":"wrongwrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Invalid username or password") {
		t.Fatalf("unexpected message: %s", rec.Body.String())
	}
}

func TestPreviewPricesFromRepository(t *testing.T) {
	deps := testDeps()
	seedProduct(t, deps, "p1", 500)
	router := testRouter(deps)

	// Preview is public and must ignore any client-side notion of price.
	rec := doJSON(router, http.MethodPost, "/order/preview", "",
		`{"orderItems":[{"productId":"p1","quantity":2,"price":1}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var preview domain.OrderPreview
	decodeData(t, rec, &preview)
	if len(preview.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(preview.Items))
	}
	item := preview.Items[0]
	if item.PerItemPriceCents != 500 || item.SubTotalCents != 1000 {
		t.Fatalf("unexpected pricing: %+v", item)
	}
	if preview.TotalPriceCents != 1000 {
		t.Fatalf("total should exclude shipping, got %d", preview.TotalPriceCents)
	}
	if preview.ShippingCostCents != 250 {
		t.Fatalf("expected shipping 250, got %d", preview.ShippingCostCents)
	}
}

func TestPreviewMergesDuplicateItems(t *testing.T) {
	deps := testDeps()
	seedProduct(t, deps, "p1", 300)
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/order/preview", "",
		`{"orderItems":[{"productId":"p1","quantity":1},{"productId":"p1","quantity":2}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var preview domain.OrderPreview
	decodeData(t, rec, &preview)
	if len(preview.Items) != 1 || preview.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %+v", preview.Items)
	}
}

func TestPreviewUnknownProduct(t *testing.T) {
	deps := testDeps()
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/order/preview", "",
		`{"orderItems":[{"productId":"ghost","quantity":1}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	deps := testDeps()
	seedProduct(t, deps, "p1", 500)
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/order/create", "",
		`{"orderItems":[{"productId":"p1","quantity":1}]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Authentication required") {
		t.Fatalf("unexpected message: %s", rec.Body.String())
	}
}

func TestProductWriteRequiresAdmin(t *testing.T) {
	deps := testDeps()
	userToken := seedUser(t, deps, "u1", "dave", domain.RoleUser)
	adminToken := seedUser(t, deps, "a1", "root", domain.RoleAdmin)
	router := testRouter(deps)

	body := `{"name":"Espresso","priceCents":450,"category":"coffee","stock":10}`
	rec := doJSON(router, http.MethodPost, "/products", userToken, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user create: expected 403, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(router, http.MethodPost, "/products", adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestProductListPaged(t *testing.T) {
	deps := testDeps()
	for i := 0; i < 3; i++ {
		seedProduct(t, deps, "p"+string(rune('1'+i)), 100)
	}
	router := testRouter(deps)

	rec := doJSON(router, http.MethodGet, "/products?page=0&size=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var page struct {
		Content      []domain.Product `json:"content"`
		Page         int              `json:"page"`
		Size         int              `json:"size"`
		TotalPages   int              `json:"totalPages"`
		TotalResults int              `json:"totalResults"`
	}
	decodeData(t, rec, &page)
	if len(page.Content) != 2 || page.TotalResults != 3 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestOrderLifecycle(t *testing.T) {
	deps := testDeps()
	token := seedUser(t, deps, "u1", "erin", domain.RoleUser)
	seedProduct(t, deps, "p1", 500)
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/order/create", token,
		`{"orderItems":[{"productId":"p1","quantity":2}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var order domain.Order
	decodeData(t, rec, &order)
	if order.ID == "" || order.Status != domain.OrderStatusPlaced {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.TotalPriceCents != 1000 || order.ShippingCostCents != 250 {
		t.Fatalf("unexpected totals: %+v", order)
	}

	rec = doJSON(router, http.MethodGet, "/order/orders", token, "")
	var orders []domain.Order
	decodeData(t, rec, &orders)
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("unexpected order list: %+v", orders)
	}

	rec = doJSON(router, http.MethodDelete, "/order/"+order.ID, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Order cancelled successfully") {
		t.Fatalf("unexpected message: %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodGet, "/order/orders", token, "")
	decodeData(t, rec, &orders)
	if len(orders) != 1 || orders[0].Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled order, got %+v", orders)
	}
}

func TestCancelOtherUsersOrderHidden(t *testing.T) {
	deps := testDeps()
	ownerToken := seedUser(t, deps, "u1", "frank", domain.RoleUser)
	otherToken := seedUser(t, deps, "u2", "grace", domain.RoleUser)
	seedProduct(t, deps, "p1", 500)
	router := testRouter(deps)

	rec := doJSON(router, http.MethodPost, "/order/create", ownerToken,
		`{"orderItems":[{"productId":"p1","quantity":1}]}`)
	var order domain.Order
	decodeData(t, rec, &order)

	rec = doJSON(router, http.MethodDelete, "/order/"+order.ID, otherToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	deps := testDeps()
	userToken := seedUser(t, deps, "u1", "henry", domain.RoleUser)
	adminToken := seedUser(t, deps, "a1", "root", domain.RoleAdmin)
	router := testRouter(deps)

	if rec := doJSON(router, http.MethodGet, "/user", userToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec := doJSON(router, http.MethodGet, "/user", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var users []domain.User
	decodeData(t, rec, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	deps := testDeps()
	seedUser(t, deps, "u1", "iris", domain.RoleUser)
	router := testRouter(deps)

	token, err := issueToken(testSecret, domain.User{ID: "u1", Role: domain.RoleUser}, -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := doJSON(router, http.MethodGet, "/user/me", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}
