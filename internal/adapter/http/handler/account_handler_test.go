package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/adapter/http/middleware"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

const testUserID = "user-1"

type accountServiceStub struct {
	createFn  func(ctx context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, userID, id string) (*domain.Account, error)
	listFn    func(ctx context.Context, userID string) ([]*domain.Account, error)
	replaceFn func(ctx context.Context, userID, id string, input usecase.ReplaceAccountInput) (*domain.Account, error)
	deleteFn  func(ctx context.Context, userID, id string) error
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, userID, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, userID, id string) (*domain.Account, error) {
	return s.getFn(ctx, userID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return s.listFn(ctx, userID)
}

func (s *accountServiceStub) ReplaceAccount(ctx context.Context, userID, id string, input usecase.ReplaceAccountInput) (*domain.Account, error) {
	return s.replaceFn(ctx, userID, id, input)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

// authed attaches the test user to req.
func authed(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), &domain.User{ID: testUserID}))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		Name:     "test",
		Type:     domain.AccountTypeCash,
		Currency: "TWD",
		Balance:  decimal.NewFromInt(3500),
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error) {
			if userID != testUserID {
				t.Fatalf("expected user %s, got %s", testUserID, userID)
			}
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:     "test",
		Type:     "Cash",
		Currency: "TWD",
		Balance:  "3500",
	})

	req := authed(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "test" || captured.Type != domain.AccountTypeCash || !captured.Balance.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Balance != "3500" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	for _, body := range []string{"{invalid json", `{"name":"x","balance":"abc"}`} {
		req := authed(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(body)))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", body, rec.Code)
		}
	}
}

func TestAccountHandler_Create_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrInvalidAccountType, http.StatusBadRequest},
		{"storage", errors.New("db error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				createFn: func(ctx context.Context, userID string, input usecase.CreateAccountInput) (*domain.Account, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.CreateAccountRequest{Name: "test", Type: "Bogus"})
			req := authed(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAccountHandler_RequiresUser(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	account := &domain.Account{ID: "acc-1", Name: "test"}
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, userID, id string) (*domain.Account, error) {
			if id != "acc-1" {
				t.Fatalf("expected id acc-1, got %s", id)
			}
			return account, nil
		},
	})

	req := authed(httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, userID, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := authed(httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, userID string) ([]*domain.Account, error) {
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := authed(httptest.NewRequest(http.MethodGet, "/accounts", nil))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 || resp.Total != 2 {
		t.Fatalf("expected 2 accounts, got %+v", resp)
	}
}

func TestAccountHandler_Replace(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		replaceFn: func(ctx context.Context, userID, id string, input usecase.ReplaceAccountInput) (*domain.Account, error) {
			if id != "acc-1" || !input.Balance.Equal(decimal.NewFromInt(500)) {
				t.Fatalf("unexpected replace %s %+v", id, input)
			}
			return &domain.Account{ID: id, Name: input.Name, Balance: input.Balance}, nil
		},
	})

	body, _ := json.Marshal(dto.ReplaceAccountRequest{Name: "renamed", Type: "Savings", Currency: "TWD", Balance: "500"})
	req := authed(httptest.NewRequest(http.MethodPut, "/accounts/acc-1", bytes.NewReader(body)))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Replace(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_Delete(t *testing.T) {
	var deleted string
	handler := NewAccountHandler(&accountServiceStub{
		deleteFn: func(ctx context.Context, userID, id string) error {
			if id == "missing" {
				return domain.ErrAccountNotFound
			}
			deleted = id
			return nil
		},
	})

	req := authed(httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent || deleted != "acc-1" {
		t.Fatalf("expected 204 deleting acc-1, got %d (%q)", rec.Code, deleted)
	}

	req = authed(httptest.NewRequest(http.MethodDelete, "/accounts/missing", nil))
	req = setChiURLParam(req, "id", "missing")
	rec = httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
