package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hea-health/risk-engine/internal/risk"
)

// NewFeedbackCmd creates the 'feedback' command: record the user's
// verdict on an assessment and recalibrate.
func NewFeedbackCmd() *cobra.Command {
	var (
		user         string
		assessmentID string
		feedbackType string
		comment      string
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Confirm, adjust, or reject a risk assessment",
		Long: `Record feedback on an assessment. Feedback can be given once per
assessment and recalibrates future assessments for the same user:
confirmations strengthen the signal categories that predicted the risk,
rejections weaken them and can slowly raise the bar for that risk level.`,
		Example: `  hea-risk feedback --user anna --assessment 6f1c... --type confirm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fb := risk.FeedbackType(feedbackType)
			if !fb.Valid() {
				return fmt.Errorf("invalid --type %q: must be confirm, adjust, or reject", feedbackType)
			}

			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			state, err := eng.ApplyFeedback(user, assessmentID, fb, comment)
			if err != nil {
				return err
			}

			fmt.Printf("Feedback %q recorded for assessment %s\n", fb, assessmentID)
			fmt.Println("Updated calibration:")
			for _, cat := range risk.Categories {
				fmt.Printf("  %-11s x%.2f\n", cat, state.Multiplier(cat))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier (required)")
	cmd.Flags().StringVar(&assessmentID, "assessment", "", "assessment id (required)")
	cmd.Flags().StringVar(&feedbackType, "type", "", "confirm, adjust, or reject (required)")
	cmd.Flags().StringVar(&comment, "comment", "", "optional free-text correction")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("assessment")
	cmd.MarkFlagRequired("type")

	return cmd
}
