package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	issueQuery string
	issueDays  int
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new embed token",
	Long: `Issue creates an embed token bound to the given Cypher query and
prints the shareable URL.

Example:
  embedctl issue --query "MATCH (n:Person)-[r]->(m) RETURN n, r, m LIMIT 50"
  embedctl issue --query "MATCH (n) RETURN n LIMIT 10" --days 30 --json`,
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().StringVar(&issueQuery, "query", "", "Cypher query to bind (required)")
	issueCmd.Flags().IntVar(&issueDays, "days", 0, "expiry in days (default: configured default)")
	_ = issueCmd.MarkFlagRequired("query")
}

func runIssue(cmd *cobra.Command, args []string) error {
	var days *int
	if cmd.Flags().Changed("days") {
		days = &issueDays
	}

	result, err := service.Issue(cmd.Context(), issueQuery, days)
	if err != nil {
		return fmt.Errorf("issue embed token: %w", err)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Token:   %s\n", result.EmbedToken)
	fmt.Printf("URL:     %s\n", result.EmbedURL)
	fmt.Printf("Expires: %s\n", result.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
