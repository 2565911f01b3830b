package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// Fallback texts shown instead of advice.
const (
	AdviceNotConfigured = "請配置 API Key 以啟用 AI 財務顧問功能。"
	AdviceUnavailable   = "AI 服務暫時無法使用，請稍後再試。"
	AdviceEmpty         = "目前無法生成建議。"
)

// Advise asks the model for a short Traditional Chinese commentary on the
// user's recent transactions and portfolio. It never fails.
func (c *Client) Advise(ctx context.Context, req usecase.AdviceRequest) (string, usecase.AdviceOutcome) {
	if !c.Enabled() {
		return AdviceNotConfigured, usecase.AdviceNotConfigured
	}

	prompt, err := advicePrompt(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to build advice prompt")
		return AdviceUnavailable, usecase.AdviceFailed
	}

	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("advice request failed")
		return AdviceUnavailable, usecase.AdviceFailed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return AdviceEmpty, usecase.AdviceEmpty
	}
	return text, usecase.AdviceGenerated
}

func advicePrompt(req usecase.AdviceRequest) (string, error) {
	recent := make([]string, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		recent = append(recent, fmt.Sprintf("%s: %s $%s (%s)", t.Date.Format(domain.DateLayout), t.Type, t.Amount, t.Category))
	}

	portfolio := make([]string, 0, len(req.Stocks))
	for _, s := range req.Stocks {
		portfolio = append(portfolio, fmt.Sprintf("%s: %s股, 成本 %s", s.Symbol, s.Shares, s.AverageCost))
	}

	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return "", err
	}
	portfolioJSON, err := json.Marshal(portfolio)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("作為一位專業的財務顧問，請根據以下使用者的財務數據提供簡短的建議和洞察（約 150 字）。\n")
	b.WriteString("使用繁體中文回答。\n\n")
	fmt.Fprintf(&b, "近期交易紀錄 (最近 %d 筆):\n%s\n\n", usecase.AdviceTransactionLimit, recentJSON)
	fmt.Fprintf(&b, "股票投資組合:\n%s\n\n", portfolioJSON)
	fmt.Fprintf(&b, "淨資產: %s，未實現損益: %s\n\n", req.NetWorth.StringFixed(0), req.Portfolio.Gain.StringFixed(0))
	b.WriteString("請分析消費習慣與投資狀況，並給出建議。\n")

	return b.String(), nil
}
