// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/Shreehariballakkuraya/ScanPOS/database/migrations"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/database"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/migration"
)

var seq atomic.Int64

// Open returns a fresh database private to t with every migration applied.
// It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)
	return db
}
