// Package main provides the embedctl CLI for operating on embed tokens
// directly against the token store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	"embedgraph-backend/infrastructure/config"
	"embedgraph-backend/infrastructure/sqlite"
)

var (
	// jsonOutput is set by the --json flag.
	jsonOutput bool

	cfg     *config.Config
	store   *sqlite.TokenStore
	service *appembed.Service
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "embedctl",
	Short: "embedctl manages embed tokens",
	Long: `embedctl is the operator tool for the embed service. It issues,
revokes, and cleans up embed tokens against the local token store, and can
seed the graph database with demonstration data.`,
	PersistentPreRunE: initEnv,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("embedctl v0.1.0")
	},
}

// initEnv loads configuration and opens the token store.
func initEnv(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Seeding talks to the graph database only.
	if cmd.Name() == "seed" {
		return nil
	}

	store, err = sqlite.OpenTokenStore(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}

	baseURL := cfg.EmbedBaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + cfg.ServerAddress
	}

	// The CLI never runs queries, so no executor is wired in.
	service = appembed.NewService(store, nil, zap.NewNop(), appembed.Options{
		BaseURL:           baseURL,
		DefaultExpiryDays: cfg.DefaultExpiryDays,
		MaxExpiryDays:     cfg.MaxExpiryDays,
	})

	return nil
}

// closeEnv releases the token store.
func closeEnv() error {
	if store != nil {
		return store.Close()
	}
	return nil
}
