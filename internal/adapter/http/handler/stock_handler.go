package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// StockService defines the behavior needed by StockHandler.
type StockService interface {
	CreateStock(ctx context.Context, userID string, input usecase.CreateStockInput) (*domain.StockPosition, error)
	GetStock(ctx context.Context, userID, id string) (*domain.StockPosition, error)
	ListStocks(ctx context.Context, userID string) ([]*domain.StockPosition, error)
	ReplaceStock(ctx context.Context, userID, id string, input usecase.ReplaceStockInput) (*domain.StockPosition, error)
	UpdateStockPrice(ctx context.Context, userID, id string, price decimal.Decimal) (*domain.StockPosition, error)
	DeleteStock(ctx context.Context, userID, id string) error
	RefreshPrices(ctx context.Context, userID, trigger string) ([]*domain.StockPosition, error)
}

// StockHandler handles stock position HTTP requests.
type StockHandler struct {
	stockUC StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockUC StockService) *StockHandler {
	return &StockHandler{stockUC: stockUC}
}

// Create adds a position.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.CreateStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stock, err := h.stockUC.CreateStock(r.Context(), uid, input)
	if err != nil {
		writeDomainError(w, "failed to create stock", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.StockFromDomain(stock))
}

// Get retrieves a position by ID.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	stock, err := h.stockUC.GetStock(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get stock", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StockFromDomain(stock))
}

// List lists the caller's positions.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	stocks, err := h.stockUC.ListStocks(r.Context(), uid)
	if err != nil {
		writeDomainError(w, "failed to list stocks", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStocksResponse{
		Stocks: dto.StocksFromDomain(stocks),
		Total:  int64(len(stocks)),
	})
}

// Replace overwrites a position with the request body.
func (h *StockHandler) Replace(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.ReplaceStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stock, err := h.stockUC.ReplaceStock(r.Context(), uid, chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, "failed to replace stock", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StockFromDomain(stock))
}

// UpdatePrice sets the current price of one position.
func (h *StockHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.UpdatePriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	price, err := req.ParsePrice()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	stock, err := h.stockUC.UpdateStockPrice(r.Context(), uid, chi.URLParam(r, "id"), price)
	if err != nil {
		writeDomainError(w, "failed to update price", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StockFromDomain(stock))
}

// Delete removes a position.
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.stockUC.DeleteStock(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete stock", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refresh re-prices every position of the caller and returns the result.
func (h *StockHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	stocks, err := h.stockUC.RefreshPrices(r.Context(), uid, usecase.RefreshTriggerManual)
	if err != nil {
		writeDomainError(w, "failed to refresh prices", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStocksResponse{
		Stocks: dto.StocksFromDomain(stocks),
		Total:  int64(len(stocks)),
	})
}
