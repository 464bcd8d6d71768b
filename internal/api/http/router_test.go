package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/order-manager/internal/api/http"
	"github.com/spec-kit/order-manager/internal/api/http/handlers"
	"github.com/spec-kit/order-manager/internal/auth"
	"github.com/spec-kit/order-manager/internal/config"
	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/events"
	"github.com/spec-kit/order-manager/internal/observability"
	"github.com/spec-kit/order-manager/internal/service"
)

type memStore struct {
	seq      int
	users    map[string]*domain.User
	products map[string]*domain.Product
	orders   map[string]*domain.Order
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*domain.User),
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + strconv.Itoa(m.seq)
}

func (m *memStore) Create(_ context.Context, user *domain.User) error {
	user.ID = m.nextID("u-")
	m.users[user.ID] = user
	return nil
}

func (m *memStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memStore) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

type memProducts struct{ store *memStore }

func (m memProducts) Create(_ context.Context, product *domain.Product) error {
	product.ID = m.store.nextID("p-")
	m.store.products[product.ID] = product
	return nil
}

func (m memProducts) Update(_ context.Context, product *domain.Product) error {
	if _, ok := m.store.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.store.products[product.ID] = product
	return nil
}

func (m memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.store.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.store.products, id)
	return nil
}

func (m memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if product, ok := m.store.products[id]; ok {
		return product, nil
	}
	return nil, pgx.ErrNoRows
}

func (m memProducts) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, product := range m.store.products {
		if product.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m memProducts) List(_ context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.store.products))
	for _, product := range m.store.products {
		out = append(out, product)
	}
	return out, nil
}

type memOrders struct{ store *memStore }

func (m memOrders) Create(_ context.Context, order *domain.Order) error {
	order.ID = m.store.nextID("o-")
	m.store.orders[order.ID] = order
	return nil
}

func (m memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if order, ok := m.store.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m memOrders) ListByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.store.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m memOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	order, ok := m.store.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

func (m memOrders) Delete(_ context.Context, id string) error {
	if _, ok := m.store.orders[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.store.orders, id)
	return nil
}

type testServer struct {
	app   *fiber.App
	store *memStore
	now   *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	server := &testServer{store: newMemStore(), now: &now}

	authCfg := config.AuthConfig{
		JWTSecret:             "test-signing-key",
		AccessTokenTTLSeconds: 900,
		BcryptCost:            4,
	}
	clock := auth.WithClock(func() time.Time { return *server.now })
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(authCfg, server.store, dispatcher, clock)
	userService := service.NewUserService(server.store, authCfg.BcryptCost, logger)
	productService := service.NewProductService(memProducts{server.store}, nil, time.Minute, logger)
	orderService := service.NewOrderService(memOrders{server.store}, memProducts{server.store}, server.store, dispatcher, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("order-manager", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		Orders:         handlers.NewOrdersHandler(orderService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), server.store, logger),
	})
	server.app = app
	return server
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp.StatusCode, parsed
}

func (s *testServer) register(t *testing.T, username, password string) {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status)
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func (s *testServer) promote(t *testing.T, username string) {
	t.Helper()
	user, err := s.store.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	user.Role = domain.RoleAdmin
}

func TestLoginAndBearerFlow(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice", "good-pw")
	token := server.login(t, "alice", "good-pw")

	t.Run("token resolves principal before expiry", func(t *testing.T) {
		status, body := server.do(t, http.MethodGet, "/orders/", token, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.NotNil(t, body["data"])
	})

	t.Run("expired token falls back to anonymous", func(t *testing.T) {
		*server.now = server.now.Add(time.Hour)
		status, body := server.do(t, http.MethodGet, "/orders/", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "UNAUTHORIZED", errBody["code"])
	})
}

func TestLoginFailureShapeIsUniform(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice", "good-pw")

	wrongStatus, wrongBody := server.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "bad-pw",
	})
	unknownStatus, unknownBody := server.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "good-pw",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, unknownStatus, wrongStatus)
	assert.Equal(t, wrongBody, unknownBody)
}

func TestAnonymousAccess(t *testing.T) {
	server := newTestServer(t)

	t.Run("public product listing", func(t *testing.T) {
		status, _ := server.do(t, http.MethodGet, "/products/", "", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("orders require identity", func(t *testing.T) {
		status, body := server.do(t, http.MethodGet, "/orders/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "UNAUTHORIZED", errBody["code"])
	})
}

func TestRoleEnforcement(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice", "good-pw")
	server.register(t, "root", "root-pw")
	server.promote(t, "root")

	userToken := server.login(t, "alice", "good-pw")
	adminToken := server.login(t, "root", "root-pw")

	product := map[string]any{"name": "widget", "description": "", "price": 9.99}

	t.Run("user cannot create products", func(t *testing.T) {
		status, body := server.do(t, http.MethodPost, "/products/", userToken, product)
		assert.Equal(t, http.StatusForbidden, status)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "FORBIDDEN", errBody["code"])
	})

	t.Run("admin can create products", func(t *testing.T) {
		status, _ := server.do(t, http.MethodPost, "/products/", adminToken, product)
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("user cannot list accounts", func(t *testing.T) {
		status, _ := server.do(t, http.MethodGet, "/users/", userToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("admin can list accounts", func(t *testing.T) {
		status, body := server.do(t, http.MethodGet, "/users/", adminToken, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["data"], 2)
	})
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice", "good-pw")
	server.register(t, "root", "root-pw")
	server.promote(t, "root")

	adminToken := server.login(t, "root", "root-pw")
	userToken := server.login(t, "alice", "good-pw")

	status, body := server.do(t, http.MethodPost, "/products/", adminToken,
		map[string]any{"name": "widget", "price": 9.99})
	require.Equal(t, http.StatusCreated, status)
	productID := body["data"].(map[string]any)["id"].(string)

	status, body = server.do(t, http.MethodPost, "/orders/", userToken, map[string]any{
		"lines": []map[string]any{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status)
	orderData := body["data"].(map[string]any)
	assert.Equal(t, string(domain.OrderStatusPending), orderData["status"])
	orderID := orderData["id"].(string)

	status, body = server.do(t, http.MethodPut, "/orders/"+orderID+"/complete", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(domain.OrderStatusCompleted), body["data"].(map[string]any)["status"])

	status, _ = server.do(t, http.MethodDelete, "/orders/"+orderID, userToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestDeletedAccountTokenDowngradesToAnonymous(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice", "good-pw")
	token := server.login(t, "alice", "good-pw")

	user, err := server.store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, server.store.Delete(context.Background(), user.ID))

	status, body := server.do(t, http.MethodGet, "/orders/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])
}
