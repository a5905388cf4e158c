package cmd

import (
	"bitwise74/leads-api/email"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewEmailCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "email-test",
		Short: "Sends a test email to admin.email with the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			mail, err := email.NewFromConfig()
			if err != nil {
				return err
			}

			if !mail.TestConfiguration(cmd.Context()) {
				return errors.New("test email could not be sent, check the logs")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %v\n", viper.GetString("admin.email"))
			return nil
		},
	}
}
