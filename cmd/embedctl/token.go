package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"embedgraph-backend/pkg/auth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an admin JWT for the issuance API",
	Long: `Token signs a short-lived JWT with the configured secret. Pass it
as a Bearer token when calling the embed issuance endpoints.

Example:
  embedctl token --subject alice --ttl 8h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "subject claim (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, args []string) error {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}

	generator, err := auth.NewJWTGenerator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	}, tokenTTL)
	if err != nil {
		return fmt.Errorf("create token generator: %w", err)
	}

	signed, err := generator.GenerateToken(tokenSubject, []string{"admin"})
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Println(signed)
	return nil
}
