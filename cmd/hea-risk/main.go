/*
Package main is the entry point for the hea-risk CLI.

hea-risk turns noisy, self-reported daily health data into an
explainable, personally calibrated risk signal. It fuses free-text
symptom analysis and per-user metric deviation into one ranked,
weighted assessment, and recalibrates itself from user feedback.

Usage:
  hea-risk [command]

Available Commands:
  submit       Submit a daily health input and get a risk assessment
  feedback     Confirm, adjust, or reject a risk assessment
  history      Show past assessments for a user
  baseline     Show a user's rolling baseline profiles
  calibration  Show a user's calibration state
  cleanup      Remove aged raw inputs and feedback records

Examples:
  # Log today's check-in
  hea-risk submit --user anna --text "feeling really tired and drained" --sleep 5.5 --mood 4

  # Agree with the assessment
  hea-risk feedback --user anna --assessment <id> --type confirm
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hea-health/risk-engine/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hea-risk",
		Short: "Early health risk detection from daily self-reported inputs",
		Long: `hea-risk is the Hea signal fusion and calibration engine.

Each daily check-in (free text, emoji, symptom checkboxes, and numeric
metrics) is analyzed by two independent detectors — symptom language
analysis and personal baseline deviation — and fused into one ranked,
explainable risk assessment. User feedback on assessments continuously
recalibrates category weights and risk thresholds, per user.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewSubmitCmd())
	rootCmd.AddCommand(cli.NewFeedbackCmd())
	rootCmd.AddCommand(cli.NewHistoryCmd())
	rootCmd.AddCommand(cli.NewBaselineCmd())
	rootCmd.AddCommand(cli.NewCalibrationCmd())
	rootCmd.AddCommand(cli.NewCleanupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
