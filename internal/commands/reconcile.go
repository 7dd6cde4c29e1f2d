package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/reconcile"
)

func newReconcileCommand(configPath *string) *cobra.Command {
	var from, to string
	var projectMethod, projectAmount string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compute expected balances for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if to == "" {
				to = from
			}
			statement, err := app.engine.Compute(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			printStatement(cmd, statement)

			if projectMethod != "" {
				method, ok := model.ParseMethod(projectMethod)
				if !ok {
					return fmt.Errorf("unknown payment method %q", projectMethod)
				}
				amount, err := decimal.NewFromString(projectAmount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", projectAmount, err)
				}
				printProjection(cmd, statement, method, amount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "range end, YYYY-MM-DD (defaults to the start)")
	cmd.Flags().StringVar(&projectMethod, "project-method", "", "method for a what-if withdrawal")
	cmd.Flags().StringVar(&projectAmount, "project-amount", "0", "amount for the what-if withdrawal")

	return cmd
}

func printStatement(cmd *cobra.Command, st reconcile.Statement) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reconciliation %s .. %s\n\n", st.From, st.To)
	fmt.Fprintf(out, "%-11s %12s %12s %12s %12s %12s %12s\n",
		"method", "opening", "sales", "withdrawn", "expenses", "transfers", "expected")
	for _, m := range model.Methods() {
		line := st.Lines[m]
		fmt.Fprintf(out, "%-11s %12s %12s %12s %12s %12s %12s\n",
			m,
			line.Opening.StringFixed(2),
			line.Sales.StringFixed(2),
			line.Withdrawals.StringFixed(2),
			line.Expenses.StringFixed(2),
			line.TransfersNet.StringFixed(2),
			line.Expected.StringFixed(2))
	}
	fmt.Fprintf(out, "%-11s %64s %12s\n", "total", "", st.Total.StringFixed(2))

	if st.Coverage.Partial() {
		fmt.Fprintf(out, "\nWARNING: opening totals are incomplete (%s)\n", st.Coverage.Status)
		if st.Coverage.WindowTruncated {
			fmt.Fprintf(out, "  only the first %d of %d days were fetched for openings\n",
				st.Coverage.DaysFetched, st.Coverage.DaysRequested)
		}
		if len(st.Coverage.FailedDays) > 0 {
			fmt.Fprintf(out, "  failed days: %s\n", strings.Join(st.Coverage.FailedDays, ", "))
		}
	}
}

func printProjection(cmd *cobra.Command, st reconcile.Statement, method model.PaymentMethod, amount decimal.Decimal) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nAfter withdrawing %s from %s:\n", amount.StringFixed(2), method)
	projected := st.Project(method, amount)
	for _, m := range model.Methods() {
		fmt.Fprintf(out, "%-11s %12s\n", m, projected[m].StringFixed(2))
	}
}
