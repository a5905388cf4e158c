package cmd

import (
	"bitwise74/leads-api/security"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewAdminTokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issues a token for the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := security.IssueAdminToken(viper.GetString("jwt.secret"), subject, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "who the token is for, shows up in the request logs")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token stays valid")
	cmd.MarkFlagRequired("subject")

	return cmd
}
