package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
	"github.com/iho/smartwealth/internal/usecase"
)

// DefaultStreamHeartbeat is how often an idle stream sends a keep-alive comment.
const DefaultStreamHeartbeat = 25 * time.Second

// eventSummary names the SSE event carrying the recomputed dashboard summary.
const eventSummary = "summary"

var allKinds = []domain.EntityKind{domain.KindAccounts, domain.KindTransactions, domain.KindStocks}

// StreamSources are the read paths a stream pushes from.
type StreamSources struct {
	Accounts     AccountService
	Transactions TransactionService
	Stocks       StockService
	Dashboard    DashboardService
}

// StreamHandler pushes the caller's record sets over Server-Sent Events.
// Every change event re-sends the full record set of the changed kind
// followed by a freshly computed summary.
type StreamHandler struct {
	feed      usecase.ChangeFeed
	sources   StreamSources
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	heartbeat time.Duration
	now       func() time.Time
}

// NewStreamHandler creates a new StreamHandler. A non-positive heartbeat
// selects DefaultStreamHeartbeat.
func NewStreamHandler(feed usecase.ChangeFeed, sources StreamSources, m *metrics.Metrics, logger zerolog.Logger, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultStreamHeartbeat
	}
	return &StreamHandler{
		feed:      feed,
		sources:   sources,
		metrics:   m,
		logger:    logger,
		heartbeat: heartbeat,
		now:       time.Now,
	}
}

// Stream serves GET /api/v1/stream.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	sub, err := h.feed.Subscribe(ctx, uid)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", uid).Msg("change feed subscribe failed")
		writeError(w, http.StatusServiceUnavailable, "change feed unavailable", "")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
		defer h.metrics.StreamClients.Dec()
	}

	s := &sseWriter{w: w, rc: http.NewResponseController(w)}

	if err := h.push(r, s, uid, allKinds); err != nil {
		h.logger.Debug().Err(err).Str("user_id", uid).Msg("stream closed")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.comment("ping"); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			kinds := coalesce(ev, sub.Events())
			if err := h.push(r, s, uid, kinds); err != nil {
				h.logger.Debug().Err(err).Str("user_id", uid).Msg("stream closed")
				return
			}
		}
	}
}

// coalesce folds the events already waiting in events into first, so a
// burst of changes triggers one reload per kind.
func coalesce(first domain.ChangeEvent, events <-chan domain.ChangeEvent) []domain.EntityKind {
	seen := map[domain.EntityKind]bool{}
	add := func(ev domain.ChangeEvent) {
		switch ev.Kind {
		case domain.KindAccounts, domain.KindTransactions, domain.KindStocks:
			seen[ev.Kind] = true
		default:
			for _, k := range allKinds {
				seen[k] = true
			}
		}
	}

	add(first)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return orderedKinds(seen)
			}
			add(ev)
		default:
			return orderedKinds(seen)
		}
	}
}

func orderedKinds(seen map[domain.EntityKind]bool) []domain.EntityKind {
	kinds := make([]domain.EntityKind, 0, len(seen))
	for _, k := range allKinds {
		if seen[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// push sends the record set of each kind and then the summary.
func (h *StreamHandler) push(r *http.Request, s *sseWriter, uid string, kinds []domain.EntityKind) error {
	ctx := r.Context()

	for _, kind := range kinds {
		var payload any
		switch kind {
		case domain.KindAccounts:
			accounts, err := h.sources.Accounts.ListAccounts(ctx, uid)
			if err != nil {
				return err
			}
			payload = dto.ListAccountsResponse{Accounts: dto.AccountsFromDomain(accounts), Total: int64(len(accounts))}
		case domain.KindTransactions:
			views, err := h.sources.Transactions.ListTransactionViews(ctx, uid, domain.TransactionFilter{})
			if err != nil {
				return err
			}
			payload = dto.ListTransactionsResponse{Transactions: dto.TransactionsFromViews(views), Total: int64(len(views))}
		case domain.KindStocks:
			stocks, err := h.sources.Stocks.ListStocks(ctx, uid)
			if err != nil {
				return err
			}
			payload = dto.ListStocksResponse{Stocks: dto.StocksFromDomain(stocks), Total: int64(len(stocks))}
		}
		if err := s.event(string(kind), payload); err != nil {
			return err
		}
	}

	now := h.now()
	summary, err := h.sources.Dashboard.Summary(ctx, uid, now.Year(), now.Month())
	if err != nil {
		return err
	}
	return s.event(eventSummary, dto.SummaryFromUseCase(summary))
}

type sseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (s *sseWriter) event(name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, raw); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *sseWriter) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.rc.Flush()
}
