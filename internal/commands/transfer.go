package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/movements"
)

func newTransferCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Record and manage inter-bucket transfers",
	}
	cmd.AddCommand(newTransferAddCommand(configPath))
	cmd.AddCommand(newTransferListCommand(configPath))
	cmd.AddCommand(newTransferRemoveCommand(configPath))
	return cmd
}

func newTransferAddCommand(configPath *string) *cobra.Command {
	var date, from, to, amount, note, by string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Move an amount between two payment methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			fromMethod, ok := model.ParseMethod(from)
			if !ok {
				return fmt.Errorf("unknown payment method %q (want one of %v)", from, model.Methods())
			}
			toMethod, ok := model.ParseMethod(to)
			if !ok {
				return fmt.Errorf("unknown payment method %q (want one of %v)", to, model.Methods())
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			entry, err := app.transfers.Create(cmd.Context(), movements.TransferParams{
				Date:      date,
				From:      fromMethod,
				To:        toMethod,
				Amount:    value,
				Note:      note,
				CreatedBy: by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded transfer %s: %s from %s to %s on %s\n",
				entry.ID, entry.Amount.StringFixed(2), entry.From, entry.To, entry.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&from, "from", "", "payment method debited (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "payment method credited (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&amount, "amount", "", "amount moved (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	cmd.Flags().StringVar(&by, "by", "", "employee recording the transfer")

	return cmd
}

func newTransferListCommand(configPath *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			list, err := app.transfers.List(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transfers found.")
				return nil
			}
			for _, entry := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-11s -> %-11s %10s  %s\n",
					entry.ID, entry.Date, entry.From, entry.To, entry.Amount.StringFixed(2), entry.Note)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (empty for all)")
	cmd.Flags().StringVar(&to, "to", "", "range end, YYYY-MM-DD (empty for all)")

	return cmd
}

func newTransferRemoveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transfer by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := app.transfers.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transfer %s\n", args[0])
			return nil
		},
	}
}
