// Package cmd contains the command line interface of the leads API
package cmd

import (
	"bitwise74/leads-api/config"
	"bitwise74/leads-api/util"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "path to a config file, config.toml in the working directory is used if empty")
	flagSet.String("log-level", "", "overrides app.log_level")
}

// NewRootCommand returns the leads-api command with every subcommand attached
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:           "leads-api",
		Short:         "Resource request API and notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Setup(cmd.Flags(), opts.ConfigPath); err != nil {
				return err
			}

			if err := util.SetupLogger(viper.GetString("app.log_level")); err != nil {
				return fmt.Errorf("failed to setup logger, %w", err)
			}

			return nil
		},
	}
	opts.AddFlags(root.PersistentFlags())

	root.AddCommand(
		NewServeCommand(),
		NewCleanupCommand(),
		NewReportCommand(),
		NewEmailCheckCommand(),
		NewAdminTokenCommand(),
	)

	return root
}
