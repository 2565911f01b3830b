package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/adapter/http/handler"
	apimiddleware "github.com/iho/smartwealth/internal/adapter/http/middleware"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/auth"
	"github.com/iho/smartwealth/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessLogins(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"StrongPass1"}`))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := login(); code == http.StatusTooManyRequests {
		t.Fatal("expected first login to pass the limiter")
	}
	if code := login(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second login to be throttled, got %d", code)
	}

	// Health checks are never throttled.
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected /health to return 200, got %d", rec.Code)
		}
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"Main","type":"cash","balance":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.checkedKey != routerTestUser+":key-123" {
		t.Fatalf("expected idempotency key scoped to user, got %q", store.checkedKey)
	}
	if !store.updated {
		t.Fatal("expected the response to be stored")
	}
}

func TestNewRouter_StaticUserServesLedger(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Accounts []struct {
			ID string `json:"id"`
		} `json:"accounts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].ID != routerTestUser+"-acc" {
		t.Fatalf("expected the static user's account, got %+v", resp.Accounts)
	}

	// Password endpoints are not exposed in single-user mode.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`)))
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected login to be unavailable, got %d", rec.Code)
	}
}

func TestNewRouter_JWTProtectsLedger(t *testing.T) {
	jwtManager := auth.NewJWTManager("router-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Authenticator = apimiddleware.AuthMiddleware(jwtManager, nil)
		cfg.AuthHandler = handler.NewAuthHandler(&stubUserService{}, nil, jwtManager, zerolog.Nop())
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	token, err := jwtManager.Generate(&domain.User{ID: "jwt-user", Email: "jwt@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "jwt-user") {
		t.Fatalf("expected current user in body, got %s", rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /api/v1/auth/me",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"PUT /api/v1/accounts/{id}",
		"DELETE /api/v1/accounts/{id}",
		"POST /api/v1/transactions/",
		"DELETE /api/v1/transactions/{id}",
		"POST /api/v1/stocks/",
		"PUT /api/v1/stocks/{id}/price",
		"POST /api/v1/stocks/refresh",
		"GET /api/v1/dashboard/summary",
		"GET /api/v1/dashboard/report",
		"POST /api/v1/dashboard/advice",
		"GET /api/v1/categories",
		"GET /api/v1/reconciliation",
		"GET /api/v1/stream",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

const routerTestUser = "local"

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	users := &stubUserService{}
	cfg := RouterConfig{
		HealthHandler:         &handler.HealthHandler{},
		AccountHandler:        handler.NewAccountHandler(stubAccountService{}),
		TransactionHandler:    handler.NewTransactionHandler(stubTransactionService{}),
		StockHandler:          handler.NewStockHandler(stubStockService{}),
		DashboardHandler:      handler.NewDashboardHandler(stubDashboardService{}),
		ReconciliationHandler: handler.NewReconciliationHandler(stubReconciliationService{}),
		StreamHandler:         handler.NewStreamHandler(nil, handler.StreamSources{}, nil, zerolog.Nop(), 0),
		AuthHandler:           handler.NewAuthHandler(users, nil, auth.NewJWTManager("secret", time.Hour), zerolog.Nop()),
		Authenticator:         apimiddleware.StaticUser(&domain.User{ID: routerTestUser, Email: "local@example.com", Active: true}),
		MetricsHandler:        http.NotFoundHandler(),
		Logger:                zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.RateLimiter != nil {
		cfg.PasswordAuth = true
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) CreateAccount(_ context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: userID + "-acc", UserID: userID, Name: input.Name, Type: input.Type, Balance: input.Balance, Currency: "TWD"}, nil
}

func (stubAccountService) GetAccount(_ context.Context, userID, id string) (*domain.Account, error) {
	return &domain.Account{ID: id, UserID: userID}, nil
}

func (stubAccountService) ListAccounts(_ context.Context, userID string) ([]*domain.Account, error) {
	return []*domain.Account{{ID: userID + "-acc", UserID: userID, Balance: decimal.NewFromInt(1)}}, nil
}

func (stubAccountService) ReplaceAccount(_ context.Context, userID, id string, _ usecase.ReplaceAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: id, UserID: userID}, nil
}

func (stubAccountService) DeleteAccount(context.Context, string, string) error {
	return nil
}

type stubTransactionService struct{}

func (stubTransactionService) CreateTransaction(_ context.Context, userID string, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "tx", UserID: userID, AccountID: input.AccountID}, nil
}

func (stubTransactionService) GetTransaction(_ context.Context, userID, id string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: id, UserID: userID}, nil
}

func (stubTransactionService) ListTransactionViews(context.Context, string, domain.TransactionFilter) ([]usecase.TransactionView, error) {
	return nil, nil
}

func (stubTransactionService) DeleteTransaction(context.Context, string, string) error {
	return nil
}

type stubStockService struct{}

func (stubStockService) CreateStock(_ context.Context, userID string, input usecase.CreateStockInput) (*domain.StockPosition, error) {
	return &domain.StockPosition{ID: "stock", UserID: userID, Symbol: input.Symbol}, nil
}

func (stubStockService) GetStock(_ context.Context, userID, id string) (*domain.StockPosition, error) {
	return &domain.StockPosition{ID: id, UserID: userID}, nil
}

func (stubStockService) ListStocks(context.Context, string) ([]*domain.StockPosition, error) {
	return nil, nil
}

func (stubStockService) ReplaceStock(_ context.Context, userID, id string, _ usecase.ReplaceStockInput) (*domain.StockPosition, error) {
	return &domain.StockPosition{ID: id, UserID: userID}, nil
}

func (stubStockService) UpdateStockPrice(_ context.Context, userID, id string, price decimal.Decimal) (*domain.StockPosition, error) {
	return &domain.StockPosition{ID: id, UserID: userID, CurrentPrice: price}, nil
}

func (stubStockService) DeleteStock(context.Context, string, string) error {
	return nil
}

func (stubStockService) RefreshPrices(context.Context, string, string) ([]*domain.StockPosition, error) {
	return nil, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Summary(context.Context, string, int, time.Month) (*usecase.Summary, error) {
	return &usecase.Summary{}, nil
}

func (stubDashboardService) Report(context.Context, string, domain.TransactionType, int) (*usecase.Report, error) {
	return &usecase.Report{}, nil
}

func (stubDashboardService) Advice(context.Context, string) (string, error) {
	return "", nil
}

type stubReconciliationService struct{}

func (stubReconciliationService) ReconcileAccount(_ context.Context, _ string, accountID string) (*usecase.ReconciliationResult, error) {
	return &usecase.ReconciliationResult{AccountID: accountID}, nil
}

func (stubReconciliationService) GenerateReconciliationReport(context.Context, string) (*usecase.ReconciliationReport, error) {
	return &usecase.ReconciliationReport{}, nil
}

type stubUserService struct{}

func (stubUserService) Register(_ context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: "new", Email: input.Email, Name: input.Name, Active: true}, nil
}

func (stubUserService) Authenticate(context.Context, usecase.AuthenticateInput) (*domain.User, error) {
	return nil, domain.ErrUnauthorized
}

func (stubUserService) GetUser(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id, Email: id + "@example.com", Active: true}, nil
}

type stubIdempotencyStore struct {
	checkedKey string
	updated    bool
}

func (s *stubIdempotencyStore) CheckAndSet(_ context.Context, key string, _ []byte, _ time.Duration) (bool, []byte, error) {
	s.checkedKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(context.Context, string, []byte, time.Duration) error {
	s.updated = true
	return nil
}

func (s *stubIdempotencyStore) Release(context.Context, string) error {
	return nil
}
