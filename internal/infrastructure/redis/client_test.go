package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	tests := []struct {
		name       string
		url        string
		clientName string
		db         int
	}{
		{"defaults client name", fmt.Sprintf("redis://%s", s.Addr()), "smartwealth", 0},
		{"keeps explicit client name", fmt.Sprintf("redis://%s/2?client_name=ledger-worker", s.Addr()), "ledger-worker", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client, err := NewClient(ctx, tt.url)
			if err != nil {
				t.Fatalf("expected client, got error: %v", err)
			}
			defer client.Close()

			opts := client.Options()
			if opts.ClientName != tt.clientName {
				t.Fatalf("expected client name %q, got %q", tt.clientName, opts.ClientName)
			}
			if opts.DB != tt.db {
				t.Fatalf("expected db %d, got %d", tt.db, opts.DB)
			}

			if err := client.Set(ctx, "records:ping", "1", 0).Err(); err != nil {
				t.Fatalf("write through new client failed: %v", err)
			}
		})
	}
}

func TestNewClientRejectsNonRedisScheme(t *testing.T) {
	if _, err := NewClient(context.Background(), "postgres://localhost:5432/smartwealth"); err == nil {
		t.Fatalf("expected error for non-redis URL")
	}
}

func TestNewClientFailsWhenServerIsDown(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close()

	if _, err := NewClient(context.Background(), url); err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}
