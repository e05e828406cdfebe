package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"formfield.app/database/seeders"
	"formfield.app/models"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestInitialize_Idempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Initialize(db, true, true))
	require.NoError(t, Initialize(db, true, true))

	var count int64
	require.NoError(t, db.Model(&models.Country{}).Count(&count).Error)
	assert.Equal(t, int64(len(seeders.Countries)), count)

	for _, table := range []any{&models.Form{}, &models.Field{}, &models.Submission{}, &models.SubmissionValue{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestInitialize_NothingToDo(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Initialize(db, false, false))
	assert.False(t, db.Migrator().HasTable(&models.Country{}))
}

func TestInitialize_SeedWithoutTablesRollsBack(t *testing.T) {
	db := openMemory(t)

	assert.Error(t, Initialize(db, false, true))
}
