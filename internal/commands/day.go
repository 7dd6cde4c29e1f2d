package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/cashday"
	"github.com/tillbook-dev/tillbook/internal/model"
)

func newDayCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Open, close and inspect business days",
	}
	cmd.AddCommand(newDayOpenCommand(configPath))
	cmd.AddCommand(newDayCloseCommand(configPath))
	cmd.AddCommand(newDayStatusCommand(configPath))
	return cmd
}

func newDayOpenCommand(configPath *string) *cobra.Command {
	var date, employee, breakdown string
	var till, withdrawal, send string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Record the opening declaration for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			lines, err := parseBreakdown(breakdown)
			if err != nil {
				return err
			}
			totals, err := parseAmounts(till, withdrawal, send)
			if err != nil {
				return err
			}

			baseline, err := app.days.YesterdayClosing(cmd.Context(), date)
			if err == nil && baseline.Sign() > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Previous closing cash: %s\n", baseline.StringFixed(2))
			}

			open, err := app.days.Open(cmd.Context(), cashday.OpenParams{
				Date:          date,
				Employee:      employee,
				Breakdown:     lines,
				OpeningTill:   totals[0],
				OpeningWithdr: totals[1],
				OpeningSend:   totals[2],
			})
			if err != nil {
				if errors.Is(err, cashday.ErrDayOpened) {
					return fmt.Errorf("%w; use 'tillbook day status --date %s' to see the existing record", err, date)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s with cash %s (open id %s)\n",
				open.Date, open.OpeningCash.StringFixed(2), open.OpenID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&employee, "employee", "", "employee recording the opening (required)")
	_ = cmd.MarkFlagRequired("employee")
	cmd.Flags().StringVar(&breakdown, "breakdown", "", "cash denominations as DENOMxCOUNT pairs, e.g. 1000x2,100x5 (required)")
	_ = cmd.MarkFlagRequired("breakdown")
	cmd.Flags().StringVar(&till, "till", "0", "opening till-float total")
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "0", "opening withdrawal-bucket total")
	cmd.Flags().StringVar(&send, "send", "0", "opening send-money total")

	return cmd
}

func newDayCloseCommand(configPath *string) *cobra.Command {
	var date, openID, employee, breakdown string
	var till, withdrawal, send string

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Record the closing declaration for an opened date",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			lines, err := parseBreakdown(breakdown)
			if err != nil {
				return err
			}
			totals, err := parseAmounts(till, withdrawal, send)
			if err != nil {
				return err
			}

			closing, err := app.days.Close(cmd.Context(), cashday.CloseParams{
				Date:          date,
				OpenID:        openID,
				Employee:      employee,
				Breakdown:     lines,
				ClosingTill:   totals[0],
				ClosingWithdr: totals[1],
				ClosingSend:   totals[2],
			})
			if err != nil {
				if errors.Is(err, cashday.ErrDayClosed) {
					return fmt.Errorf("%w; use 'tillbook day status --date %s' to see the existing record", err, date)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %s with cash %s\n", closing.Date, closing.ClosingCash.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&openID, "open-id", "", "open id to close against (guards against closing the wrong day)")
	cmd.Flags().StringVar(&employee, "employee", "", "employee recording the close (required)")
	_ = cmd.MarkFlagRequired("employee")
	cmd.Flags().StringVar(&breakdown, "breakdown", "", "counted cash as DENOMxCOUNT pairs (required)")
	_ = cmd.MarkFlagRequired("breakdown")
	cmd.Flags().StringVar(&till, "till", "0", "closing till-float total")
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "0", "closing withdrawal-bucket total")
	cmd.Flags().StringVar(&send, "send", "0", "closing send-money total")

	return cmd
}

func newDayStatusCommand(configPath *string) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a date's opening and closing record",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			day, err := app.days.GetDay(cmd.Context(), date)
			if err != nil {
				if errors.Is(err, cashday.ErrNotOpened) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: not opened\n", date)
					return nil
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s opened by %s at %s\n", day.Open.Date, day.Open.Employee, day.Open.OpenedAt.Format("15:04"))
			fmt.Fprintf(out, "  opening: cash %s, till %s, withdrawal %s, send %s\n",
				day.Open.OpeningCash.StringFixed(2), day.Open.OpeningTill.StringFixed(2),
				day.Open.OpeningWithdr.StringFixed(2), day.Open.OpeningSend.StringFixed(2))
			if day.Close == nil {
				fmt.Fprintln(out, "  still open")
				return nil
			}
			fmt.Fprintf(out, "  closed by %s at %s\n", day.Close.Employee, day.Close.ClosedAt.Format("15:04"))
			fmt.Fprintf(out, "  closing: cash %s, till %s, withdrawal %s, send %s\n",
				day.Close.ClosingCash.StringFixed(2), day.Close.ClosingTill.StringFixed(2),
				day.Close.ClosingWithdr.StringFixed(2), day.Close.ClosingSend.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// parseBreakdown reads DENOMxCOUNT pairs like "1000x2,100x5" into a
// denomination breakdown with derived line amounts.
func parseBreakdown(s string) (model.Breakdown, error) {
	var out model.Breakdown
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		denomStr, countStr, found := strings.Cut(pair, "x")
		if !found {
			return nil, fmt.Errorf("invalid breakdown entry %q, want DENOMxCOUNT", pair)
		}
		denom, err := decimal.NewFromString(strings.TrimSpace(denomStr))
		if err != nil {
			return nil, fmt.Errorf("invalid denomination in %q: %w", pair, err)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, fmt.Errorf("invalid count in %q: %w", pair, err)
		}
		out = append(out, model.DenominationLine{
			Denomination: denom,
			Count:        count,
			Amount:       denom.Mul(decimal.NewFromInt(int64(count))),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty breakdown %q", s)
	}
	return out, out.Validate()
}

func parseAmounts(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		amount, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", v, err)
		}
		out[i] = amount
	}
	return out, nil
}
