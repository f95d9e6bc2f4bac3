package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/database"
	"github.com/iliyamo/apparel-studio/internal/handler"
	"github.com/iliyamo/apparel-studio/internal/imagehost"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/queue"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/router"
	"github.com/iliyamo/apparel-studio/internal/service"
)

const testSecret = "router-test-secret"

type testServer struct {
	e      *echo.Echo
	db     *gorm.DB
	users  *repository.UserRepo
	events *queue.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{Env: "test", JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}
	host := imagehost.NewMemory("https://cdn.test")
	events := &queue.Recorder{}

	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogProductRepo(db)
	custom := repository.NewCustomizableProductRepo(db)
	designs := repository.NewDesignRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	legacyUsers := repository.NewLegacyUserRepo(db)

	images := service.NewImageService(host, repository.NewImageDeletionRepo(db), nil, nil)
	lookup := service.NewProductLookup(catalog, custom, designs)
	auth := service.NewAuthService(users, repository.NewTokenRepo(db), service.AuthConfig{
		JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4,
	}, nil)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, auth),
		Products: handler.NewProductHandler(service.NewProductService(catalog, custom, images, nil), nil),
		Designs:  handler.NewDesignHandler(service.NewDesignService(designs, custom)),
		Cart: handler.NewCartHandler(
			service.NewCartService(carts, lookup),
			service.NewFavoriteService(repository.NewFavoriteRepo(db), lookup),
		),
		Orders: handler.NewOrderHandler(
			service.NewOrderService(orders, carts, lookup, events, nil),
			service.NewPaymentService(repository.NewPaymentRepo(db), orders, users, legacyUsers, events, nil),
		),
		Admin: handler.NewAdminHandler(repository.NewLedgerRepo(db), repository.NewInventoryRepo(db), users, legacyUsers,
			service.NewLegacyService(users, legacyUsers)),
		Media: handler.NewMediaHandler(images, repository.NewCanvasResourceRepo(db), 1<<20, nil),
	}
	e := router.New(router.Options{Cfg: cfg, DB: db}, h)
	return &testServer{e: e, db: db, users: users, events: events}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	User struct {
		ID    uint64 `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers a customer and returns its access token.
func (s *testServer) signup(t *testing.T, email string) (string, uint64) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/signup", echo.Map{"email": email, "password": "password123", "name": "Test"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[authBody](t, rec)
	return body.Access.Token, body.User.ID
}

// admin registers an account, promotes it and signs in again so the token
// carries the admin role.
func (s *testServer) admin(t *testing.T, email string) (string, uint64) {
	t.Helper()
	_, id := s.signup(t, email)
	require.NoError(t, s.users.SetRole(t.Context(), id, model.RoleAdmin))
	rec := s.do(t, http.MethodPost, "/auth/login", echo.Map{"email": email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[authBody](t, rec)
	require.Equal(t, model.RoleAdmin, body.User.Role)
	return body.Access.Token, id
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupSetsSessionCookies(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/signup", echo.Map{"email": "Ana@Example.com", "password": "password123", "name": "Ana"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, "access")
	require.Contains(t, cookies, handler.RefreshCookie)
	assert.True(t, cookies["access"].HttpOnly)
	assert.Equal(t, "/", cookies["access"].Path)
	assert.Equal(t, "/auth", cookies[handler.RefreshCookie].Path)

	body := decode[authBody](t, rec)
	assert.Equal(t, "ana@example.com", body.User.Email)
	assert.Equal(t, model.RoleCustomer, body.User.Role)

	me := s.do(t, http.MethodGet, "/auth/me", nil, body.Access.Token)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "ana@example.com")

	dup := s.do(t, http.MethodPost, "/auth/signup", echo.Map{"email": "ana@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "bo@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
		want   int
	}{
		{"me without token", http.MethodGet, "/auth/me", nil, "", http.StatusUnauthorized},
		{"me with garbage token", http.MethodGet, "/auth/me", nil, "not-a-jwt", http.StatusUnauthorized},
		{"wrong password", http.MethodPost, "/auth/login", echo.Map{"email": "bo@example.com", "password": "nope-nope"}, "", http.StatusUnauthorized},
		{"short password", http.MethodPost, "/auth/signup", echo.Map{"email": "x@example.com", "password": "short"}, "", http.StatusBadRequest},
		{"refresh without token", http.MethodPost, "/auth/refresh", echo.Map{}, "", http.StatusBadRequest},
		{"unknown refresh token", http.MethodPost, "/auth/refresh", echo.Map{"refresh_token": "deadbeef"}, "", http.StatusUnauthorized},
		{"google not configured", http.MethodGet, "/auth/google", nil, "", http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.body, tc.token)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.signup(t, "c@example.com")
	admin, _ := s.admin(t, "a@example.com")

	product := echo.Map{"name": "Hoodie", "slug": "hoodie", "price": "20.00", "is_active": true}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/catalog-products", product, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/catalog-products", product, customer).Code)

	rec := s.do(t, http.MethodPost, "/api/catalog-products", product, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	bySlug := s.do(t, http.MethodGet, "/api/catalog-products/slug/hoodie", nil, "")
	require.Equal(t, http.StatusOK, bySlug.Code)
	assert.Contains(t, bySlug.Body.String(), `"name":"Hoodie"`)

	missing := s.do(t, http.MethodGet, "/api/catalog-products/999", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, missing.Body.String())

	dup := s.do(t, http.MethodPost, "/api/catalog-products", product, admin)
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestCheckoutAndPaymentReview(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.admin(t, "a@example.com")
	customer, _ := s.signup(t, "c@example.com")
	other, _ := s.signup(t, "o@example.com")

	rec := s.do(t, http.MethodPost, "/api/catalog-products", echo.Map{"name": "Hoodie", "slug": "hoodie", "price": "20.00", "is_active": true}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[model.CatalogProduct](t, rec)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/orders", echo.Map{"shipping_address": "1 Main St"}, customer).Code)

	rec = s.do(t, http.MethodPost, "/api/cart", echo.Map{"product_type": "catalog", "product_id": product.ID, "quantity": 2}, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/orders", echo.Map{"shipping_address": "1 Main St"}, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[model.Order](t, rec)
	assert.Equal(t, "40.00", order.Total.StringFixed(2))
	assert.Equal(t, model.OrderPending, order.Status)

	cart := s.do(t, http.MethodGet, "/api/cart", nil, customer)
	require.Equal(t, http.StatusOK, cart.Code)
	assert.Contains(t, cart.Body.String(), `"items":[]`)

	orderPath := "/api/orders/" + jsonID(order.ID)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, orderPath, nil, other).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, orderPath, nil, admin).Code)

	rec = s.do(t, http.MethodPost, "/api/payments", echo.Map{"order_id": order.ID, "amount": "40.00", "type": "full", "reference_number": "GC-1"}, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decode[struct {
		Payment     model.Payment `json:"payment"`
		OrderStatus string        `json:"order_status"`
	}](t, rec)
	assert.Equal(t, model.OrderPaymentReview, submitted.OrderStatus)

	approvePath := "/api/payments/" + jsonID(submitted.Payment.ID) + "/approve"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, approvePath, nil, customer).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/payments", nil, customer).Code)

	rec = s.do(t, http.MethodPatch, approvePath, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decode[struct {
		Order model.Order `json:"order"`
	}](t, rec)
	assert.Equal(t, model.OrderPaid, decided.Order.Status)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPatch, approvePath, nil, admin).Code)

	placed, payments := s.events.Snapshot()
	assert.Len(t, placed, 1)
	assert.Len(t, payments, 1)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.signup(t, "c@example.com")
	admin, _ := s.admin(t, "a@example.com")

	for _, path := range []string{"/api/ledger", "/api/inventory", "/api/admin/orders", "/api/ledger/summary"} {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, nil, customer).Code, path)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, nil, admin).Code, path)
	}
	bad := s.do(t, http.MethodGet, "/api/admin/orders?status=lost", nil, admin)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCanvasResourcesArePublic(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/canvas-resources", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func (s *testServer) upload(t *testing.T, folder, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", folder))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="front.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cloudinary/upload", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestUploadFolders(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.signup(t, "c@example.com")
	admin, _ := s.admin(t, "a@example.com")

	assert.Equal(t, http.StatusForbidden, s.upload(t, "products", customer).Code)
	assert.Equal(t, http.StatusBadRequest, s.upload(t, "secrets", admin).Code)

	rec := s.upload(t, "previews", customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[struct {
		PublicID string `json:"public_id"`
		URL      string `json:"url"`
	}](t, rec)
	assert.True(t, strings.HasPrefix(asset.PublicID, "previews/"), asset.PublicID)
	assert.True(t, strings.HasSuffix(asset.PublicID, ".png"), asset.PublicID)
	assert.Equal(t, "https://cdn.test/"+asset.PublicID, asset.URL)

	assert.Equal(t, http.StatusCreated, s.upload(t, "products", admin).Code)
}

func jsonID(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
