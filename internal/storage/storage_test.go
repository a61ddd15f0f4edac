package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"

	"github.com/teamspace-app/teamspace/internal/gormw"
)

func setupDB(t *testing.T) *gormw.DB {
	t.Helper()

	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	return db
}
