package dal

import (
	"errors"
	"time"

	"github.com/foopis23/art-of-the-week/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultThemePool seeds an empty theme pool.
var DefaultThemePool = []string{
	"Metamorphosis",
	"Hidden Places",
	"Midnight Snack",
	"Overgrown",
	"Parallel Worlds",
	"Rust and Bones",
	"Soft Machines",
	"The Last Light",
	"Tiny Giants",
	"Underwater City",
	"What the Crow Saw",
	"Winter Harvest",
}

// DrawUnusedTheme returns a random unused theme for the given scope.
// If the pool is empty it is seeded with DefaultThemePool first; if every
// theme is used, usage is reset in bulk (themes are never deleted) and the
// draw retried. Callers must mark the returned theme used in the same
// logical step; two concurrent draws before either marks can still return
// the same theme, which is accepted as a rare low-harm race.
func DrawUnusedTheme(scopeID string, db *gorm.DB) (*models.Theme, error) {
	var total int64
	if err := db.Model(&models.Theme{}).Where("scope_id = ?", scopeID).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		if err := SeedThemes(scopeID, DefaultThemePool, db); err != nil {
			return nil, err
		}
	}

	var unused int64
	if err := db.Model(&models.Theme{}).
		Where("scope_id = ? AND used_at IS NULL", scopeID).
		Count(&unused).Error; err != nil {
		return nil, err
	}
	if unused == 0 {
		if err := ResetThemeUsage(scopeID, db); err != nil {
			return nil, err
		}
	}

	var theme models.Theme
	err := db.Where("scope_id = ? AND used_at IS NULL", scopeID).
		Order("RANDOM()").
		Take(&theme).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoThemesAvailable
		}
		return nil, err
	}

	return &theme, nil
}

// MarkThemeUsed stamps the theme as used in its scope.
func MarkThemeUsed(scopeID string, theme string, db *gorm.DB) error {
	now := time.Now()
	return db.Model(&models.Theme{}).
		Where("scope_id = ? AND theme = ?", scopeID, theme).
		Update("used_at", &now).Error
}

// SeedThemes inserts the given themes into a scope's pool, skipping any
// that are already present.
func SeedThemes(scopeID string, themes []string, db *gorm.DB) error {
	rows := make([]models.Theme, len(themes))
	for i, theme := range themes {
		rows[i] = models.Theme{ScopeID: scopeID, Theme: theme}
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ResetThemeUsage marks every theme in the scope unused.
func ResetThemeUsage(scopeID string, db *gorm.DB) error {
	return db.Model(&models.Theme{}).
		Where("scope_id = ?", scopeID).
		Update("used_at", nil).Error
}
