package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
)

func loginCmd(opts *cliOptions) *cobra.Command {
	var req dto.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/auth/login", req, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "export SMARTWEALTH_TOKEN=%s\n", resp.Token)
			fmt.Fprintf(out, "# expires %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
			if resp.Seeded {
				fmt.Fprintln(out, "# demo data added to your empty ledger")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func accountsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Bank and cash accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/accounts", nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printAccounts(cmd.OutOrStdout(), resp.Accounts)
			return nil
		},
	}

	var create dto.CreateAccountRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/accounts", create, &resp); err != nil {
				return err
			}
			return printCreated(cmd.OutOrStdout(), opts, "account", resp.ID, resp)
		},
	}
	add.Flags().StringVar(&create.Name, "name", "", "Account name")
	add.Flags().StringVar(&create.Type, "type", "savings", "checking, savings, investment or cash")
	add.Flags().StringVar(&create.Balance, "balance", "0", "Opening balance")
	add.Flags().StringVar(&create.Currency, "currency", "", "Currency code (default TWD)")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(list, add, deleteCmd(opts, "account", "/accounts/"))
	return cmd
}

func transactionsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Income and expense records",
	}

	var filter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/transactions"
			if filter != "" {
				path += "?" + url.Values{"type": {filter}}.Encode()
			}
			var resp dto.ListTransactionsResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printTransactions(cmd.OutOrStdout(), resp.Transactions)
			return nil
		},
	}
	list.Flags().StringVar(&filter, "type", "", "all, income or expense")

	var create dto.CreateTransactionRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Record income or an expense",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransactionResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/transactions", create, &resp); err != nil {
				return err
			}
			return printCreated(cmd.OutOrStdout(), opts, "transaction", resp.ID, resp)
		},
	}
	add.Flags().StringVar(&create.AccountID, "account", "", "Account ID")
	add.Flags().StringVar(&create.Date, "date", "", "Date as YYYY-MM-DD")
	add.Flags().StringVar(&create.Amount, "amount", "", "Positive amount")
	add.Flags().StringVar(&create.Type, "type", "expense", "income or expense")
	add.Flags().StringVar(&create.Category, "category", "", "Category (defaults to the first suggestion)")
	add.Flags().StringVar(&create.Description, "description", "", "Free-form note")
	for _, name := range []string{"account", "date", "amount"} {
		_ = add.MarkFlagRequired(name)
	}

	cmd.AddCommand(list, add, deleteCmd(opts, "transaction", "/transactions/"))
	return cmd
}

func stocksCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stocks",
		Aliases: []string{"stock"},
		Short:   "Stock positions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListStocksResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/stocks", nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printStocks(cmd.OutOrStdout(), resp.Stocks)
			return nil
		},
	}

	var create dto.CreateStockRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.StockResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/stocks", create, &resp); err != nil {
				return err
			}
			return printCreated(cmd.OutOrStdout(), opts, "position", resp.ID, resp)
		},
	}
	add.Flags().StringVar(&create.Symbol, "symbol", "", "Ticker symbol")
	add.Flags().StringVar(&create.Name, "name", "", "Display name")
	add.Flags().StringVar(&create.Shares, "shares", "", "Share count")
	add.Flags().StringVar(&create.AverageCost, "cost", "", "Average cost per share")
	add.Flags().StringVar(&create.Currency, "currency", "", "Currency code (default TWD)")
	for _, name := range []string{"symbol", "name", "shares", "cost"} {
		_ = add.MarkFlagRequired(name)
	}

	price := &cobra.Command{
		Use:   "price <id> <price>",
		Short: "Set the current price of a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.StockResponse
			req := dto.UpdatePriceRequest{Price: args[1]}
			if err := opts.client().do(cmd.Context(), http.MethodPut, "/stocks/"+url.PathEscape(args[0])+"/price", req, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printStocks(cmd.OutOrStdout(), []*dto.StockResponse{&resp})
			return nil
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh every position with simulated market prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListStocksResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/stocks/refresh", nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printStocks(cmd.OutOrStdout(), resp.Stocks)
			return nil
		},
	}

	cmd.AddCommand(list, add, price, refresh, deleteCmd(opts, "position", "/stocks/"))
	return cmd
}

func summaryCmd(opts *cliOptions) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Net worth, portfolio and monthly totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if year > 0 {
				query.Set("year", strconv.Itoa(year))
			}
			if month > 0 {
				query.Set("month", strconv.Itoa(month))
			}
			path := "/dashboard/summary"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var resp dto.SummaryResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printSummary(cmd.OutOrStdout(), &resp)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current)")
	return cmd
}

func reportCmd(opts *cliOptions) *cobra.Command {
	var typ string
	var months int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Category breakdown and monthly trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{"type": {typ}}
			if months > 0 {
				query.Set("months", strconv.Itoa(months))
			}

			var resp dto.ReportResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/dashboard/report?"+query.Encode(), nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			printReport(cmd.OutOrStdout(), &resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().IntVar(&months, "months", 0, "Trend window in months (server default when 0)")
	return cmd
}

func adviceCmd(opts *cliOptions) *cobra.Command {
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Ask the advisor about your finances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AdviceResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/dashboard/advice", nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(cmd.OutOrStdout(), resp)
				return nil
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Advice)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(resp.Advice, width))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the advice without markdown rendering")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}

func reconcileCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Compare balances with their transaction history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				var resp dto.ReconciliationResultResponse
				if err := opts.client().do(cmd.Context(), http.MethodGet, "/reconciliation/"+url.PathEscape(args[0]), nil, &resp); err != nil {
					return err
				}
				if opts.json {
					writeJSON(out, resp)
					return nil
				}
				printReconciliation(out, []*dto.ReconciliationResultResponse{&resp})
				return nil
			}

			var resp dto.ReconciliationReportResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/reconciliation", nil, &resp); err != nil {
				return err
			}
			if opts.json {
				writeJSON(out, resp)
				return nil
			}
			printReconciliation(out, resp.Results)
			fmt.Fprintf(out, "\n%d of %d accounts reconciled", resp.ReconciledAccounts, resp.TotalAccounts)
			if resp.OrphanTransactions > 0 {
				fmt.Fprintf(out, ", %d transactions reference missing accounts", resp.OrphanTransactions)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func deleteCmd(opts *cliOptions, noun, prefix string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().do(cmd.Context(), http.MethodDelete, prefix+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", noun, args[0])
			return nil
		},
	}
}

func printCreated(out io.Writer, opts *cliOptions, noun, id string, resp any) error {
	if opts.json {
		writeJSON(out, resp)
		return nil
	}
	fmt.Fprintf(out, "created %s %s\n", noun, id)
	return nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printAccounts(out io.Writer, accounts []*dto.AccountResponse) {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, truncate(a.Name, 24), a.Type, formatMoney(a.Balance, a.Currency))
	}
	w.Flush()
}

func printTransactions(out io.Writer, txs []*dto.TransactionResponse) {
	w := newTable(out)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tACCOUNT\tDESCRIPTION\tID")
	for _, t := range txs {
		amount := formatMoney(t.Amount, "")
		if t.Type == "expense" {
			amount = "-" + amount
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date, t.Type, t.Category, amount, truncate(t.AccountName, 20), truncate(t.Description, 30), t.ID)
	}
	w.Flush()
}

func printStocks(out io.Writer, stocks []*dto.StockResponse) {
	w := newTable(out)
	fmt.Fprintln(w, "SYMBOL\tNAME\tSHARES\tCOST\tPRICE\tVALUE\tGAIN\tGAIN%\tID")
	for _, s := range stocks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Symbol, truncate(s.Name, 16), s.Shares,
			formatMoney(s.AverageCost, s.Currency), formatMoney(s.CurrentPrice, s.Currency),
			formatMoney(s.MarketValue, s.Currency), formatMoney(s.Gain, s.Currency),
			formatPercent(s.GainPercent), s.ID)
	}
	w.Flush()
}

func printSummary(out io.Writer, s *dto.SummaryResponse) {
	w := newTable(out)
	fmt.Fprintf(w, "Net worth\t%s\n", formatMoney(s.NetWorth, ""))
	fmt.Fprintf(w, "Cash\t%s\n", formatMoney(s.CashTotal, ""))
	fmt.Fprintf(w, "Stocks\t%s (cost %s)\n", formatMoney(s.StockValue, ""), formatMoney(s.StockCost, ""))
	fmt.Fprintf(w, "Unrealized gain\t%s (%s%%)\n", formatMoney(s.StockGain, ""), s.PortfolioGainPercent)
	fmt.Fprintf(w, "%04d-%02d income\t%s\n", s.Year, s.Month, formatMoney(s.MonthlyIncome, ""))
	fmt.Fprintf(w, "%04d-%02d expense\t%s\n", s.Year, s.Month, formatMoney(s.MonthlyExpense, ""))
	fmt.Fprintf(w, "%04d-%02d net\t%s\n", s.Year, s.Month, formatMoney(s.MonthlyNet, ""))
	w.Flush()
}

func printReport(out io.Writer, r *dto.ReportResponse) {
	fmt.Fprintf(out, "%s by category (total %s)\n", r.Type, formatMoney(r.Total, ""))
	w := newTable(out)
	for _, c := range r.Categories {
		fmt.Fprintf(w, "  %s\t%s\t%s%%\n", c.Category, formatMoney(c.Total, ""), c.Percent)
	}
	w.Flush()

	fmt.Fprintln(out, "\nTrend")
	w = newTable(out)
	fmt.Fprintln(w, "  PERIOD\tINCOME\tEXPENSE")
	for _, p := range r.Trend {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", p.Period, formatMoney(p.Income, ""), formatMoney(p.Expense, ""))
	}
	w.Flush()
}

func printReconciliation(out io.Writer, results []*dto.ReconciliationResultResponse) {
	w := newTable(out)
	fmt.Fprintln(w, "ACCOUNT\tRECORDED\tCALCULATED\tDIFFERENCE\tTXS\tSTATUS")
	for _, r := range results {
		status := "ok"
		if !r.IsReconciled {
			status = "DRIFT"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			truncate(r.AccountName, 24), r.RecordedBalance, r.CalculatedBalance, r.Difference, r.TransactionCount, status)
	}
	w.Flush()
}
