package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Revoke an embed token",
	Long: `Revoke deletes an embed token. Its URL and proxy access stop
working immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	removed, err := service.Revoke(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("revoke embed token: %w", err)
	}

	if !removed {
		return fmt.Errorf("token not found: %s", args[0])
	}

	fmt.Println("Token revoked")
	return nil
}
