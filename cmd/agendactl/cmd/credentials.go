package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/agendateonline/agendate/domain"
	"github.com/spf13/cobra"
)

var showSecrets bool

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Inspect and manage tenants' Mercado Pago credentials",
}

var credentialsGetCmd = &cobra.Command{
	Use:   "get <tenant-id>",
	Short: "Show the stored credential of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			cred, err := d.Credentials.Get(ctx, args[0])
			if errors.Is(err, domain.ErrCredentialNotFound) {
				return fmt.Errorf("tenant %s has no linked Mercado Pago account", args[0])
			}
			if err != nil {
				return err
			}
			return printCredential(cmd, cred)
		})
	},
}

var credentialsRefreshCmd = &cobra.Command{
	Use:   "refresh <tenant-id>",
	Short: "Refresh the access token of a tenant now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			cred, err := d.Refresher.Refresh(ctx, args[0])
			if err != nil {
				return fmt.Errorf("refresh failed for tenant %s: %w", args[0], err)
			}
			return printCredential(cmd, cred)
		})
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <tenant-id>",
	Short: "Unlink the Mercado Pago account of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			if err := d.Credentials.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credential of tenant %s deleted\n", args[0])
			return nil
		})
	},
}

func printCredential(cmd *cobra.Command, cred *domain.Credential) error {
	if !showSecrets {
		cred = cred.Redacted()
	}
	return printResult(cmd.OutOrStdout(), outputFormat, cred)
}

func init() {
	credentialsGetCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print tokens unredacted")
	credentialsRefreshCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print tokens unredacted")

	credentialsCmd.AddCommand(credentialsGetCmd, credentialsRefreshCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}
