// Package testdb opens migrated, seeded in-memory databases for tests.
package testdb

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"formfield.app/configs/configsdatabase"
	"formfield.app/database"
)

var seq atomic.Int64

// Open returns a fresh database with every table and the reference data,
// installed as the process-wide connection until the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrationsInOrder(db))
	require.NoError(t, database.CheckAndRunSeeders(db))

	configsdatabase.SetDB(db)
	t.Cleanup(func() {
		configsdatabase.SetDB(nil)
		_ = sqlDB.Close()
	})
	return db
}
