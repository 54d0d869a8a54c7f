package cmd

import (
	"context"

	"github.com/agendateonline/agendate/services"
	"github.com/spf13/cobra"
)

var reconcileTenant string

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Operate on provider payments",
}

var paymentsReconcileCmd = &cobra.Command{
	Use:   "reconcile <payment-id>",
	Short: "Fetch a payment from Mercado Pago and apply it to its booking, as a webhook would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			result, err := d.Reconciler.Reconcile(ctx, services.Notification{
				PaymentID:  args[0],
				Topic:      services.TopicPayment,
				TenantHint: reconcileTenant,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), outputFormat, result)
		})
	},
}

func init() {
	paymentsReconcileCmd.Flags().StringVar(&reconcileTenant, "tenant", "", "tenant whose credential may read the payment")

	paymentsCmd.AddCommand(paymentsReconcileCmd)
	rootCmd.AddCommand(paymentsCmd)
}
