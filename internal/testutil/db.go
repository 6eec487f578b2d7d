package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

// NewDB returns a migrated database private to the test. It uses
// STOREFRONT_TEST_DATABASE_URL when set and a fresh in-memory sqlite
// database otherwise.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL")
	postgres := dsn != ""
	if !postgres {
		dsn = fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	}

	db, err := pkgdb.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if postgres {
			Truncate(t, db)
		}
		_ = pkgdb.Close(db)
	})
	return db
}

func Truncate(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{"orders", "carts", "shipping_addresses", "shoppers", "products", "processed_events"}
	quoted := make([]string, len(tables))
	for i, tbl := range tables {
		quoted[i] = pq.QuoteIdentifier(tbl)
	}
	require.NoError(t, db.Exec("TRUNCATE TABLE "+strings.Join(quoted, ", ")+" CASCADE").Error)
}
