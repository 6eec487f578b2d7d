package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := bootLogger(cfg)

		db, err := bootDB(cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := db.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
			return err
		}
		logger.Info("schema migrated")
		return nil
	},
}
