package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Write every product to the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Load()
		logger := bootLogger(cfg)

		idx, err := bootIndex(cfg)
		if err != nil {
			return err
		}
		if idx == nil {
			return fmt.Errorf("ES_URL is not set")
		}

		db, err := bootDB(cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		products, err := (&repo.GormRepo{DB: db}).AllProducts(ctx)
		if err != nil {
			return err
		}
		n, err := idx.Reindex(ctx, products)
		logger.Info("reindex finished", "indexed", n, "total", len(products))
		return err
	},
}
