package main

import (
	"github.com/spf13/cobra"

	"github.com/vbonduro/everything/internal/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, cleanup, err := ctx.logger()
			if err != nil {
				return err
			}
			defer cleanup()

			// Open migrates before returning.
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			logger.Info("database is up to date", "path", cfg.DBPath)
			return database.Close()
		},
	}
}
