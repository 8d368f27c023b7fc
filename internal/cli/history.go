package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hea-health/risk-engine/internal/engine"
	"github.com/hea-health/risk-engine/internal/risk"
)

// NewHistoryCmd creates the 'history' command: list a user's past
// assessments newest-first, optionally filtered by a search query.
func NewHistoryCmd() *cobra.Command {
	var (
		user  string
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past assessments for a user",
		Example: `  hea-risk history --user anna --limit 5
  hea-risk history --user anna --query "sleep"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			assessments, err := listHistory(eng, user, query, limit)
			if err != nil {
				return err
			}
			if len(assessments) == 0 {
				fmt.Println("No assessments found.")
				return nil
			}
			for i, a := range assessments {
				if i > 0 {
					fmt.Println()
				}
				printAssessment(a)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of assessments")
	cmd.Flags().StringVar(&query, "query", "", "full-text search over explanations and signals")
	cmd.MarkFlagRequired("user")

	return cmd
}

func listHistory(eng *engine.Engine, user, query string, limit int) ([]*risk.Assessment, error) {
	if query != "" {
		return eng.SearchHistory(user, query, limit)
	}
	return eng.History(user, limit)
}
