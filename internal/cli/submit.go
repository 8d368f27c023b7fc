package cli

import (
	"github.com/spf13/cobra"

	"github.com/hea-health/risk-engine/internal/input"
)

// NewSubmitCmd creates the 'submit' command: submit one daily input and
// print the resulting assessment.
func NewSubmitCmd() *cobra.Command {
	var (
		user     string
		text     string
		emoji    []string
		symptoms []string
		source   string
		sleep    float64
		mood     int
		energy   int
		stress   int
		steps    int
		water    int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a daily health input and get a risk assessment",
		Example: `  # Metrics plus a narrative
  hea-risk submit --user anna --text "feeling really tired and drained" --sleep 5.5 --mood 4

  # Checkbox symptoms only
  hea-risk submit --user anna --symptom fatigue --symptom headache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closer, err := openEngine()
			if err != nil {
				return err
			}
			defer closer()

			in := &input.DailyInput{
				UserID:             user,
				SymptomText:        text,
				EmojiInputs:        emoji,
				CheckboxSelections: symptoms,
				Source:             input.Source(source),
			}
			// Only metrics the user actually passed enter the input.
			flags := cmd.Flags()
			if flags.Changed("sleep") {
				in.Metrics.SleepHours = &sleep
			}
			if flags.Changed("mood") {
				in.Metrics.MoodScore = &mood
			}
			if flags.Changed("energy") {
				in.Metrics.EnergyLevel = &energy
			}
			if flags.Changed("stress") {
				in.Metrics.StressLevel = &stress
			}
			if flags.Changed("steps") {
				in.Metrics.StepsCount = &steps
			}
			if flags.Changed("water") {
				in.Metrics.WaterIntakeML = &water
			}

			assessment, err := eng.Submit(cmd.Context(), in)
			if assessment != nil {
				printAssessment(assessment)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier (required)")
	cmd.Flags().StringVar(&text, "text", "", "free-text symptom narrative")
	cmd.Flags().StringArrayVar(&emoji, "emoji", nil, "emoji token (repeatable, e.g. \"tired face\")")
	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "checkbox symptom key (repeatable, e.g. fatigue)")
	cmd.Flags().StringVar(&source, "source", "web", "input source: web, whatsapp, voice")
	cmd.Flags().Float64Var(&sleep, "sleep", 0, "hours of sleep (0-24)")
	cmd.Flags().IntVar(&mood, "mood", 0, "mood score (1-10)")
	cmd.Flags().IntVar(&energy, "energy", 0, "energy level (1-10)")
	cmd.Flags().IntVar(&stress, "stress", 0, "stress level (1-10)")
	cmd.Flags().IntVar(&steps, "steps", 0, "step count")
	cmd.Flags().IntVar(&water, "water", 0, "water intake in ml")
	cmd.MarkFlagRequired("user")

	return cmd
}
