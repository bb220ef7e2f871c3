package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/querydesk/internal/api"
	"github.com/sadopc/querydesk/internal/app"
	"github.com/sadopc/querydesk/internal/config"
	"github.com/sadopc/querydesk/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flags holds the command line overrides. Empty values leave the config
// and environment untouched.
type flags struct {
	config     string
	envFile    string
	server     string
	email      string
	theme      string
	logLevel   string
	connection string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "querydesk [server-url]",
		Short: "A terminal client for the AI SQL assistant",
		Long: `querydesk talks to an AI SQL assistant service: sign in, pick a
database connection, ask questions in plain language and run the
generated SQL.

Examples:
  querydesk                                   # Use the configured server
  querydesk http://localhost:5000             # Connect to a server
  querydesk -e me@example.com --connection 3  # Prefill login, open connection 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(f, args)

			logPath, err := cfg.ResolveLogPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not resolve log path: %v\n", err)
			}
			log, closer, err := logging.New(logging.Options{
				Path:      logPath,
				MaxSizeMB: cfg.Log.MaxSizeMB,
				Level:     cfg.Log.Level,
				Format:    cfg.Log.Format,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
			}
			defer closer.Close()

			client, err := api.New(cfg.Server.URL,
				api.WithTimeout(cfg.Server.Timeout),
				api.WithLogger(log),
			)
			if err != nil {
				return err
			}
			log.WithField("server", client.BaseURL()).Info("starting querydesk")

			model := app.New(app.Options{
				Config:     cfg,
				Backend:    client,
				Logger:     log,
				Email:      f.email,
				Connection: f.connection,
			})

			p := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running application: %w", err)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&f.config, "config", "c", "", "Config file path")
	rootCmd.Flags().StringVar(&f.envFile, "env-file", ".env", "Environment file loaded before the config overrides")
	rootCmd.Flags().StringVarP(&f.server, "server", "s", "", "SQL assistant server URL")
	rootCmd.Flags().StringVarP(&f.email, "email", "e", "", "Prefill the login email")
	rootCmd.Flags().StringVar(&f.theme, "theme", "", "Color theme")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&f.connection, "connection", "", "Connection id to open after login")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "querydesk %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

// loadConfig layers settings: config file, then the environment (including
// the env file), then flags and the positional server URL.
func loadConfig(f flags, args []string) *config.Config {
	var cfg *config.Config
	var err error
	if f.config != "" {
		cfg, err = config.Load(f.config)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if f.envFile != "" {
		if err := config.LoadEnvFile(f.envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)

	if len(args) > 0 {
		cfg.Server.URL = args[0]
	}
	if f.server != "" {
		cfg.Server.URL = f.server
	}
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	return cfg
}
