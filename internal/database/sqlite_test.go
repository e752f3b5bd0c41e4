package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/internal/model"
)

func TestInitSQLiteMigratesTables(t *testing.T) {
	require.NoError(t, InitSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "sub", "test.db")}))
	defer Close()

	require.NoError(t, Health())
	for _, m := range []interface{}{&model.PollRecord{}, &model.PortEnergy{}, &model.KnownDevice{}} {
		assert.True(t, GetDB().Migrator().HasTable(m))
	}
	assert.NotNil(t, GetStats())
}

func TestWithRetry(t *testing.T) {
	require.NoError(t, InitSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "retry.db")}))
	defer Close()

	calls := 0
	err := WithRetry(func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	}, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "锁冲突时重试直到成功")

	calls = 0
	err = WithRetry(func(tx *gorm.DB) error {
		calls++
		return errors.New("no such table")
	}, 5, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "非锁冲突错误不重试")
}

func TestHealthWithoutInit(t *testing.T) {
	assert.Error(t, Health())
	assert.False(t, IsBusyError(nil))
}
