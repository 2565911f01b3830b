package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/adapter/http/middleware"
)

// runCLI executes the root command against srv and returns its stdout.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL, "--token", "tok"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}

	if got := truncate("中國信託薪轉帳戶", 5); got != "中國..." {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	writeJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1})

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount, currency, want string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"-20", "USD", "-$20.00"},
		{"abc", "USD", "abc"},
		{"10", "XXXX", "10 XXXX"},
	}

	for _, tt := range tests {
		if got := formatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("formatMoney(%q, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}

	if got := formatMoney("150000", ""); !strings.Contains(got, "150,000") {
		t.Errorf("expected default currency grouping, got %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(nil); got != "-" {
		t.Fatalf("expected - for undefined percent, got %q", got)
	}
	p := "12.50"
	if got := formatPercent(&p); got != "12.50%" {
		t.Fatalf("expected 12.50%%, got %q", got)
	}
}

func TestAccountsAddSendsIdempotencyKey(t *testing.T) {
	var got dto.CreateAccountRequest
	var key, authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/accounts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		key = r.Header.Get(middleware.IdempotencyKeyHeader)
		authHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.AccountResponse{ID: "acc-1", Name: got.Name})
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "accounts", "add", "--name", "Wallet", "--type", "cash", "--balance", "500")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if got.Name != "Wallet" || got.Type != "cash" || got.Balance != "500" {
		t.Fatalf("unexpected request body %+v", got)
	}
	if key == "" {
		t.Fatal("expected an idempotency key on POST")
	}
	if authHeader != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", authHeader)
	}
	if strings.TrimSpace(out) != "created account acc-1" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTransactionsListRendersTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "expense" {
			t.Errorf("expected type filter, got %q", r.URL.RawQuery)
		}
		if r.Header.Get(middleware.IdempotencyKeyHeader) != "" {
			t.Error("GET requests must not carry an idempotency key")
		}
		_ = json.NewEncoder(w).Encode(dto.ListTransactionsResponse{
			Transactions: []*dto.TransactionResponse{{
				ID: "tx-1", AccountName: "中國信託", Date: "2024-10-05", Amount: "18000", Type: "expense", Category: "居住",
			}},
			Total: 1,
		})
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "tx", "list", "--type", "expense")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"2024-10-05", "居住", "18,000", "tx-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAPIErrorsAreReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "account not found"})
	}))
	defer srv.Close()

	_, err := runCLI(t, srv, "accounts", "delete", "missing")

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "account not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestLoginPrintsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@example.com" || req.Password != "StrongPass1" {
			t.Errorf("unexpected credentials %+v", req)
		}
		_ = json.NewEncoder(w).Encode(dto.AuthResponse{Token: "jwt-token", ExpiresAt: time.Now().Add(time.Hour), Seeded: true})
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "login", "--email", "a@example.com", "--password", "StrongPass1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "export SMARTWEALTH_TOKEN=jwt-token") {
		t.Fatalf("expected token export line, got:\n%s", out)
	}
	if !strings.Contains(out, "demo data") {
		t.Fatalf("expected seeding note, got:\n%s", out)
	}
}

func TestAdviceRawOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/dashboard/advice" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(dto.AdviceResponse{Advice: "**Save more**"})
	}))
	defer srv.Close()

	out, err := runCLI(t, srv, "advice", "--raw")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if strings.TrimSpace(out) != "**Save more**" {
		t.Fatalf("unexpected output %q", out)
	}

	rendered := renderMarkdown("**Save more**", 40)
	if !strings.Contains(rendered, "Save more") {
		t.Fatalf("expected rendered text to keep the words, got %q", rendered)
	}
}
