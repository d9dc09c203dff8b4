// Command phrasebook runs the glossary web service.
//
//	phrasebook serve                 start the HTTP server (default)
//	phrasebook seed                  create the admin user and starter entries if missing
//	phrasebook passwd --password X   reset a user's password
//
// Configuration comes from --config (YAML) and the environment; see
// internal/config for the variable names.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/phrasebook/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "phrasebook",
		Short:         "Searchable phrase/translation glossary with an admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "path to a YAML config file")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newSeedCommand(a))
	root.AddCommand(newPasswdCommand(a))

	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.SlogLevel())
	slog.SetDefault(a.logger)

	// Ensure the database directory exists (like mkdir -p).
	if cfg.Database.Path != ":memory:" {
		dir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
