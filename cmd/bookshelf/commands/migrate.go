package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/EgorLis/my-books/internal/app"
)

var migrateTimeout time.Duration

// migrateCmd применяет миграции postgres или индексы mongo
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply embedded database migrations and exit.

  DB_DRIVER=postgres  - golang-migrate up
  DB_DRIVER=mongo     - create indexes`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
		defer cancel()
		return app.Migrate(ctx)
	},
}

func init() {
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", time.Minute, "Timeout for applying migrations")
}
