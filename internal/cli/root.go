package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hustleledger/internal/config"
)

// AppFactory builds the application for commands that need storage.
type AppFactory func(ctx context.Context) (*App, error)

// annotation marking commands that run without a backend.
const standalone = "standalone"

type runner struct {
	newApp AppFactory
	app    *App
}

// NewRootCommand assembles the hustleledger command tree.
func NewRootCommand(newApp AppFactory) *cobra.Command {
	r := &runner{newApp: newApp}

	root := &cobra.Command{
		Use:           "hustleledger",
		Short:         "Personal ledger with recurring entries and budget alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[standalone] != "" {
				return nil
			}
			app, err := r.newApp(cmd.Context())
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if r.app == nil {
				return nil
			}
			return r.app.Close()
		},
	}

	root.AddCommand(
		r.addCommand(),
		r.editCommand(),
		r.deleteCommand(),
		r.entriesCommand(),
		r.templatesCommand(),
		r.budgetCommand(),
		r.sweepCommand(),
		r.notificationsCommand(),
		r.inboxCommand(),
		nextDateCommand(),
		periodKeyCommand(),
	)
	return root
}

// Execute runs the CLI with configuration from the environment.
func Execute() {
	LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(func(ctx context.Context) (*App, error) {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		logger := SetupLogger(cfg.LogLevel, os.Stderr)
		return Bootstrap(ctx, cfg, logger)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}
