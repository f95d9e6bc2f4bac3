package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/iliyamo/apparel-studio/internal/config"
)

var memSeq atomic.Uint64

// OpenMemory opens a fresh, migrated in-memory SQLite database.  Each call
// gets its own database name so tests do not share state.
func OpenMemory() (*gorm.DB, error) {
	name := fmt.Sprintf("file:apparel_%d?mode=memory&cache=shared&_foreign_keys=1", memSeq.Add(1))
	db, err := Open(config.Config{DBDriver: "sqlite", DBDSN: name})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
