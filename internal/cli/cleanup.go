package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the 'cleanup' command: remove raw inputs and
// feedback older than the retention period.
func NewCleanupCmd() *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:     "cleanup",
		Short:   "Remove aged raw inputs and feedback records",
		Example: `  hea-risk cleanup --retention-days 90`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			retention := time.Duration(retentionDays) * 24 * time.Hour
			if err := eng.Cleanup(retention); err != nil {
				return err
			}
			fmt.Printf("Removed records older than %d days.\n", retentionDays)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 365, "retention period in days")

	return cmd
}
