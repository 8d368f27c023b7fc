package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewBaselineCmd creates the 'baseline' command: show a user's current
// rolling baseline profile per metric.
func NewBaselineCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:     "baseline",
		Short:   "Show a user's rolling baseline profiles",
		Example: `  hea-risk baseline --user anna`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			profiles, err := eng.Baselines(user)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Println("No baseline data yet — submit a few daily inputs first.")
				return nil
			}

			metrics := make([]string, 0, len(profiles))
			for m := range profiles {
				metrics = append(metrics, m)
			}
			sort.Strings(metrics)

			fmt.Printf("Baseline for %s:\n", user)
			for _, m := range metrics {
				p := profiles[m]
				fmt.Printf("  %-16s mean %8.2f  stddev %7.2f  samples %d (window %dd)\n",
					m, p.Mean, p.Stddev(), p.Count, p.WindowDays)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}
