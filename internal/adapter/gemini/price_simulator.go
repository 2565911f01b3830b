package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/iho/smartwealth/internal/domain"
)

// Random drift applied when no model answer is available.
var (
	offlineDrift = decimal.RequireFromString("0.05")
	failureDrift = decimal.RequireFromString("0.03")
)

type quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// SimulatePrices returns estimated current prices keyed by symbol. Without an
// API key every price drifts by up to ±5%; when the model call fails, by up to
// ±3%. Symbols the model leaves out are absent from the result.
func (c *Client) SimulatePrices(ctx context.Context, stocks []*domain.StockPosition) map[string]decimal.Decimal {
	if len(stocks) == 0 {
		return map[string]decimal.Decimal{}
	}
	if !c.Enabled() {
		return c.drift(stocks, offlineDrift)
	}

	text, err := c.generate(ctx, pricePrompt(stocks), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("price simulation request failed")
		return c.drift(stocks, failureDrift)
	}

	prices, err := parseQuotes(text)
	if err != nil {
		c.logger.Error().Err(err).Str("response", text).Msg("price simulation returned malformed JSON")
		return c.drift(stocks, failureDrift)
	}

	return prices
}

func (c *Client) drift(stocks []*domain.StockPosition, limit decimal.Decimal) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(stocks))
	for _, s := range stocks {
		// factor is uniform in [1-limit, 1+limit)
		r := decimal.NewFromFloat(c.random()*2 - 1)
		factor := decimal.NewFromInt(1).Add(r.Mul(limit))
		prices[s.Symbol] = s.CurrentPrice.Mul(factor).Round(2)
	}
	return prices
}

func pricePrompt(stocks []*domain.StockPosition) string {
	symbols := make([]string, 0, len(stocks))
	for _, s := range stocks {
		symbols = append(symbols, s.Symbol)
	}

	var b strings.Builder
	b.WriteString("為以下股票代碼生成模擬的\"當前市場價格\"。\n")
	b.WriteString("這是一個模擬演示，請根據真實世界的大致股價範圍給出一個合理的數值。\n\n")
	fmt.Fprintf(&b, "股票: %s\n\n", strings.Join(symbols, ", "))
	b.WriteString("請嚴格返回 JSON 格式，不要包含 Markdown 標記。\n格式如下:\n")
	b.WriteString(`[{"symbol": "2330.TW", "price": 580}, {"symbol": "AAPL", "price": 175}]`)
	b.WriteString("\n")
	return b.String()
}

func parseQuotes(raw string) (map[string]decimal.Decimal, error) {
	var quotes []quote
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &quotes); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		symbol := domain.NormalizeSymbol(q.Symbol)
		if symbol == "" || q.Price.IsNegative() {
			continue
		}
		prices[symbol] = q.Price
	}
	return prices, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite
// being asked for raw JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
