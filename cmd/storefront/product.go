package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage catalog products",
}

var productAddFlags struct {
	price       string
	stock       uint
	description string
	stripeID    string
	thumbnail   string
}

var productAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a product; its slug is derived from the name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.Load()
		bootLogger(cfg)

		price, err := decimal.NewFromString(productAddFlags.price)
		if err != nil {
			return fmt.Errorf("invalid --price %q: %w", productAddFlags.price, err)
		}

		db, err := bootDB(cfg)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		idx, err := bootIndex(cfg)
		if err != nil {
			return err
		}
		svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}}
		if idx != nil {
			svc.Indexer = idx
		}

		p := &models.Product{
			Name:        args[0],
			Price:       price,
			Stock:       productAddFlags.stock,
			Description: productAddFlags.description,
			StripeID:    productAddFlags.stripeID,
		}

		if path := productAddFlags.thumbnail; path != "" {
			bucket, err := bootBucket(ctx, cfg)
			if err != nil {
				return err
			}
			if bucket == nil {
				return fmt.Errorf("--thumbnail needs S3_BUCKET")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			key := "products/" + filepath.Base(path)
			if err := bucket.Put(ctx, key, mime.TypeByExtension(filepath.Ext(path)), f); err != nil {
				return err
			}
			p.Thumbnail = key
		}

		if err := svc.CreateProduct(ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", p.Slug, p.ID)
		return nil
	},
}

func init() {
	f := productAddCmd.Flags()
	f.StringVar(&productAddFlags.price, "price", "0", "unit price, e.g. 49.90")
	f.UintVar(&productAddFlags.stock, "stock", 0, "units in stock")
	f.StringVar(&productAddFlags.description, "description", "", "product description")
	f.StringVar(&productAddFlags.stripeID, "stripe-price", "", "Stripe price id used at checkout")
	f.StringVar(&productAddFlags.thumbnail, "thumbnail", "", "image file uploaded to the thumbnail bucket")

	productCmd.AddCommand(productAddCmd)
}
