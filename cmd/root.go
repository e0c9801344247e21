package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroscreen/internal/config"
	"github.com/abhisek/neuroscreen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "neuroscreen",
	Short: "Adaptive multimodal behavioral screening service",
	Long: "neuroscreen runs adaptive screening sessions that combine facial-emotion, motion and voice\n" +
		"signals with questionnaire answers into domain scores, a risk level and a structured report.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration for cmd from flags, environment and
// config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db (highest priority),
// then NEUROSCREEN_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openEventStore opens the SQLite database holding recorded events.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
