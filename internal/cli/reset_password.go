package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/security"
	"github.com/terraincognita07/cyclecast/internal/services"
)

const temporaryPasswordLength = 12

type passwordResetter interface {
	ResetPassword(ctx context.Context, emailRaw string, password string) (models.User, error)
}

func newResetPasswordCmd(flags *Flags) *cobra.Command {
	var (
		email  string
		prompt bool
	)

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password; the user must change it on next login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlag("email", email); err != nil {
				return err
			}

			rt, err := openRuntime(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			var read secretReader
			if prompt {
				read = terminalSecretReader(os.Stdin)
			}
			return runResetPassword(cmd.Context(), rt.authService(), email, read, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "Type the new password instead of generating one")
	return cmd
}

// runResetPassword generates a temporary password unless read is set, in which
// case the operator types one that must pass the strength rules.
func runResetPassword(ctx context.Context, auth passwordResetter, email string, read secretReader, out io.Writer) error {
	var (
		password  string
		generated bool
		err       error
	)
	if read != nil {
		password, err = promptNewPassword(out, read)
		if err != nil {
			return err
		}
		if err := services.ValidatePasswordStrength(password); err != nil {
			return fmt.Errorf("password needs 8+ characters with upper case, lower case and digits: %w", err)
		}
	} else {
		password, err = security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
		generated = true
	}

	user, err := auth.ResetPassword(ctx, email, password)
	if err != nil {
		return fmt.Errorf("reset password for %s: %w", email, err)
	}

	_, _ = color.New(color.FgGreen, color.Bold).Fprintf(out, "Password reset for %s\n", user.Email)
	if generated {
		_, _ = fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	_, _ = fmt.Fprintln(out, "User must change password on next login.")
	return nil
}
