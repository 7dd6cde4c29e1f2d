package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/movements"
)

func newWithdrawCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Record and manage manual withdrawals",
	}
	cmd.AddCommand(newWithdrawAddCommand(configPath))
	cmd.AddCommand(newWithdrawListCommand(configPath))
	cmd.AddCommand(newWithdrawRemoveCommand(configPath))
	return cmd
}

func newWithdrawAddCommand(configPath *string) *cobra.Command {
	var date, source, amount, note, by string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a withdrawal from one payment method",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			method, ok := model.ParseMethod(source)
			if !ok {
				return fmt.Errorf("unknown payment method %q (want one of %v)", source, model.Methods())
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			entry, err := app.withdrawals.Create(cmd.Context(), movements.WithdrawalParams{
				Date:      date,
				Source:    method,
				Amount:    value,
				Note:      note,
				CreatedBy: by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded withdrawal %s: %s from %s on %s\n",
				entry.ID, entry.Amount.StringFixed(2), entry.Source, entry.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&source, "from", "", "payment method debited (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&amount, "amount", "", "amount withdrawn (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	cmd.Flags().StringVar(&by, "by", "", "employee recording the withdrawal")

	return cmd
}

func newWithdrawListCommand(configPath *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List withdrawals, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			list, err := app.withdrawals.List(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No withdrawals found.")
				return nil
			}
			for _, entry := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-11s %10s  %s\n",
					entry.ID, entry.Date, entry.Source, entry.Amount.StringFixed(2), entry.Note)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (empty for all)")
	cmd.Flags().StringVar(&to, "to", "", "range end, YYYY-MM-DD (empty for all)")

	return cmd
}

func newWithdrawRemoveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a withdrawal by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := app.withdrawals.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted withdrawal %s\n", args[0])
			return nil
		},
	}
}
