package services

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errDiskFull = errors.New("disk full")

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// failUpdatesOn makes every update statement against table fail before it reaches the database
func failUpdatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errDiskFull)
		}
	})
	require.NoError(t, err)
}

// beforeFirstUpdateOn runs sql on the statement's own connection right before the first update
// against table, standing in for a competing request that committed in between
func beforeFirstUpdateOn(t *testing.T, db *gorm.DB, table, sql string, args ...interface{}) {
	t.Helper()
	var once sync.Once
	err := db.Callback().Update().Before("gorm:update").Register("test:interleave_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		once.Do(func() {
			if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, sql, args...); err != nil {
				_ = tx.AddError(err)
			}
		})
	})
	require.NoError(t, err)
}
