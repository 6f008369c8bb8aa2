package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show token store status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := store.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("token store unreachable: %w", err)
	}

	active, err := service.ActiveTokens(cmd.Context())
	if err != nil {
		return fmt.Errorf("count active tokens: %w", err)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(map[string]any{
			"path":         cfg.SQLitePath,
			"activeTokens": active,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Store:         %s\n", cfg.SQLitePath)
	fmt.Printf("Active tokens: %d\n", active)
	return nil
}
