package commands

import (
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/spf13/cobra"
)

const (
	AppName    = "pos-utils"
	AppVersion = "0.1.0"
)

// Env carries what every command needs. Flags take precedence over config.
type Env struct {
	Config *apt.Config
	Logger apt.Logger
}

// NewRootCommand creates the root command of the operator CLI.
func NewRootCommand(env *Env) *cobra.Command {
	if env.Config == nil {
		env.Config = apt.NewConfig()
	}
	if env.Logger == nil {
		env.Logger = apt.NewNoopLogger()
	}

	cmd := &cobra.Command{
		Use:           "utils",
		Short:         "Appetite POS operator utilities",
		Long:          "Operator commands for the kitchen and cashier services: schema migration, timing rule seeding, webhook signing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewMigrateCommand(env))
	cmd.AddCommand(NewSeedTimingCommand(env))
	cmd.AddCommand(NewSignCommand(env))
	cmd.AddCommand(NewResetKitchenCommand(env))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", AppName, AppVersion)
		},
	}
}
