package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/agendateonline/agendate/config"
	"github.com/agendateonline/agendate/domain"
	"github.com/agendateonline/agendate/internal/app"
	"github.com/agendateonline/agendate/log"
	"github.com/agendateonline/agendate/services"
	"github.com/spf13/cobra"
)

const appName = "agendactl"

var (
	cfgFile      string
	outputFormat string
	appLogger    log.Logger
	cfg          *config.ServerConfig
)

// reconciler is the slice of the webhook service the CLI drives.
type reconciler interface {
	Reconcile(ctx context.Context, n services.Notification) (*services.ReconcileResult, error)
}

// deps are the components commands operate on.
type deps struct {
	Credentials domain.CredentialRepository
	Refresher   services.CredentialRefresher
	Reconciler  reconciler
	Close       func(context.Context)
}

// loadDeps wires the real components. Tests replace it.
var loadDeps = func(ctx context.Context, cfg *config.ServerConfig) (*deps, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &deps{
		Credentials: a.Credentials,
		Refresher:   a.Refresher,
		Reconciler:  a.NewReconciler(""),
		Close:       a.Close,
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "agendactl manages Mercado Pago credentials and payments for AgéndateOnline businesses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = log.Setup(cfg.LogLevel, cfg.LogPretty)

		switch outputFormat {
		case outputYAML, outputJSON:
			return nil
		default:
			return fmt.Errorf("unknown output format %q", outputFormat)
		}
	},
}

// withDeps loads the components, runs fn and releases them.
func withDeps(cmd *cobra.Command, fn func(ctx context.Context, d *deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := loadDeps(ctx, cfg)
	if err != nil {
		return err
	}
	if d.Close != nil {
		defer d.Close(context.Background())
	}
	return fn(ctx, d)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if appLogger != nil {
			appLogger.Error(context.Background(), "CLI execution failed", err)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env variables take precedence)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputYAML, "output format: yaml or json")
}
