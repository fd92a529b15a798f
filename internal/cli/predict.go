package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

const lowConfidenceScore = 50

func newPredictCmd(flags *Flags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the current prediction for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlag("email", email); err != nil {
				return err
			}

			rt, err := openRuntime(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			user, err := rt.authService().FindByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("user %s: %w", email, err)
			}

			profile, err := rt.profileService().Profile(cmd.Context(), user.ID)
			if err != nil {
				return fmt.Errorf("user %s: %w", user.Email, err)
			}
			prediction, ok := services.Predict(profile)
			if !ok {
				return fmt.Errorf("user %s: %w", user.Email, services.ErrInsightsUnavailable)
			}

			printPrediction(cmd.OutOrStdout(), user.Email, profile, prediction)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func printPrediction(out io.Writer, email string, profile models.CycleProfile, prediction services.PredictionResult) {
	heading := color.New(color.FgCyan, color.Bold)
	value := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	_, _ = heading.Fprintf(out, "Prediction for %s\n", email)
	row := func(label string, format string, args ...any) {
		_, _ = fmt.Fprintf(out, "  %-16s ", label)
		_, _ = value.Fprintf(out, format+"\n", args...)
	}

	row("Last period", "%s", services.FormatDay(prediction.LastPeriod))
	row("Next period", "%s to %s", services.FormatDay(prediction.NextPeriodDate), services.FormatDay(prediction.NextPeriodEnd))
	row("Window", "%s to %s (±%d days, %.0f%%)",
		services.FormatDay(prediction.PredictionWindow.Start),
		services.FormatDay(prediction.PredictionWindow.End),
		prediction.PredictionWindow.AccuracyDays,
		prediction.PredictionWindow.Confidence*100,
	)
	row("Ovulation", "%s", services.FormatDay(prediction.OvulationDate))
	row("Fertile window", "%s to %s", services.FormatDay(prediction.FertileWindow.Start), services.FormatDay(prediction.FertileWindow.End))

	if profile.ConfidenceScore < lowConfidenceScore {
		_, _ = fmt.Fprintf(out, "  %-16s ", "Confidence")
		_, _ = warn.Fprintf(out, "%d (recent predictions missed)\n", profile.ConfidenceScore)
		return
	}
	row("Confidence", "%d", profile.ConfidenceScore)
}
