package commands

import (
	"fmt"

	"github.com/appetiteclub/pos/pkg/cashierdb"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(env *Env) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the cashier database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = env.Config.GetStringOrDef("db.postgres.url", "")
			}
			if url == "" {
				return fmt.Errorf("postgres url is required (--url or UTILS_DB_POSTGRES_URL)")
			}

			ctx := cmd.Context()
			db, err := cashierdb.Connect(ctx, url)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := cashierdb.Migrate(ctx, db); err != nil {
				return err
			}
			env.Logger.Info("Cashier schema applied", "statements", len(cashierdb.Statements()))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "postgres connection url")
	return cmd
}
