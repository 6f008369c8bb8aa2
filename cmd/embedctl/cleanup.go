package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired embed tokens",
	Long: `Cleanup removes expired rows from the token store. The server also
sweeps on a timer, so this is only needed for ad hoc housekeeping.`,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	removed, err := service.SweepExpired(cmd.Context())
	if err != nil {
		return fmt.Errorf("cleanup expired tokens: %w", err)
	}

	fmt.Printf("Removed %d expired token(s)\n", removed)
	return nil
}
