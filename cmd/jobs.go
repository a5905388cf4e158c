package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCleanupCommand runs the retention cleanup once, for cron setups that
// don't keep the server's scheduler around
func NewCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Deletes resource requests older than retention.days",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			deleted, err := d.Requests.CleanupOldRequests(cmd.Context())
			if err != nil {
				return err
			}

			if d.Pruner != nil {
				if _, err := d.Pruner.Prune(cmd.Context()); err != nil {
					return fmt.Errorf("failed to prune rate counters, %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d resource requests\n", deleted)
			return nil
		},
	}
}

func NewReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Sends the weekly report to the admin now",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			sent, err := d.Requests.SendWeeklyReport(cmd.Context())
			if err != nil {
				return err
			}

			if !sent {
				return errors.New("weekly report could not be sent")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Weekly report sent")
			return nil
		},
	}
}
