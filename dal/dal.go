package dal

import (
	"errors"

	"github.com/foopis23/art-of-the-week/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoThemesAvailable is returned when a draw finds no unused theme even
// after seeding the pool with defaults.
var ErrNoThemesAvailable = errors.New("no themes available in pool")

// InitDB opens the database and migrates the schema.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(
		sqlite.Open(dbPath),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}

	return db, nil
}
