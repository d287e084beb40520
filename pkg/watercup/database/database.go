package database

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect initializes the database connection.
// SQLite for now; the store boundary is plain GORM so a server-grade
// driver can be swapped in without touching the feature packages.
func Connect(dsn string) error {
	// Writers contend on a single file; a busy timeout beats surfacing
	// SQLITE_BUSY to every concurrent log write.
	if !strings.Contains(dsn, "_busy_timeout") && !strings.Contains(dsn, ":memory:") {
		dsn += "?_busy_timeout=5000"
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
