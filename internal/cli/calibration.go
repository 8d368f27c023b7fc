package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hea-health/risk-engine/internal/risk"
)

// NewCalibrationCmd creates the 'calibration' command: show a user's
// current weight multipliers and risk thresholds.
func NewCalibrationCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:     "calibration",
		Short:   "Show a user's calibration state",
		Example: `  hea-risk calibration --user anna`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			state, err := eng.Calibration(user)
			if err != nil {
				return err
			}

			fmt.Printf("Calibration for %s:\n", user)
			fmt.Println("  Category multipliers:")
			for _, cat := range risk.Categories {
				fmt.Printf("    %-11s x%.2f\n", cat, state.Multiplier(cat))
			}
			t := state.Thresholds
			fmt.Println("  Risk thresholds:")
			fmt.Printf("    LOW      <= %.2f\n", t.LowMax)
			fmt.Printf("    WEAK     <= %.2f\n", t.WeakMax)
			fmt.Printf("    MODERATE <= %.2f\n", t.ModerateMax)
			fmt.Printf("    HIGH      > %.2f\n", t.ModerateMax)
			if state.AdjustBacklog > 0 {
				fmt.Printf("  Adjust backlog: %d\n", state.AdjustBacklog)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}
