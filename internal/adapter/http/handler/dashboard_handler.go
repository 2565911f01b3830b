package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// DashboardService defines the behavior needed by DashboardHandler.
type DashboardService interface {
	Summary(ctx context.Context, userID string, year int, month time.Month) (*usecase.Summary, error)
	Report(ctx context.Context, userID string, typ domain.TransactionType, months int) (*usecase.Report, error)
	Advice(ctx context.Context, userID string) (string, error)
}

// DashboardHandler serves the derived read-only views of a ledger.
type DashboardHandler struct {
	dashboardUC DashboardService
	now         func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardUC DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC, now: time.Now}
}

// Summary returns net worth, portfolio P&L and the totals of one month.
// year and month default to the current month.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	now := h.now()
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			writeError(w, http.StatusBadRequest, "invalid year", v)
			return
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month", v)
			return
		}
		month = m
	}

	summary, err := h.dashboardUC.Summary(r.Context(), uid, year, time.Month(month))
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(summary))
}

// Report returns the category breakdown of one transaction type and the
// monthly trend.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	typ := domain.TransactionType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = domain.TransactionTypeExpense
	}
	months := parseIntQuery(r, "months", 0)

	report, err := h.dashboardUC.Report(r.Context(), uid, typ, months)
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromUseCase(report))
}

// Advice asks the advisor about the caller's ledger.
func (h *DashboardHandler) Advice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	advice, err := h.dashboardUC.Advice(r.Context(), uid)
	if err != nil {
		writeDomainError(w, "failed to get advice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AdviceResponse{Advice: advice})
}

// Categories returns the suggested category vocabulary.
func (h *DashboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{
		Income:  domain.IncomeCategories,
		Expense: domain.ExpenseCategories,
	})
}
