package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "TWD"

// formatMoney renders a decimal amount string with the currency's symbol and
// grouping. Unknown currencies and unparsable amounts are printed as given.
func formatMoney(amount, currency string) string {
	if currency == "" {
		currency = defaultCurrency
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount + " " + currency
	}

	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func formatPercent(p *string) string {
	if p == nil {
		return "-"
	}
	return *p + "%"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "failed to encode output: %v\n", err)
	}
}

// renderMarkdown renders advice text for the terminal, falling back to the
// raw text when rendering fails.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
