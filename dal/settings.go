package dal

import (
	"errors"

	"github.com/foopis23/art-of-the-week/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetGuildSettings returns the settings row for the guild, creating a
// default row on first access.
func GetGuildSettings(guildID string, db *gorm.DB) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := db.Where(&models.GuildSettings{GuildID: guildID}).Take(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.GuildSettings{
			GuildID:         guildID,
			AnnouncementDay: "MON",
			StreaksMode:     models.StreaksDisabled,
		}
		if err := db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertGeneralSettings inserts or updates the guild's announcement
// channel, announcement day and streaks mode.
func UpsertGeneralSettings(settings models.GuildSettings, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"announcement_channel_id", "announcement_day", "streaks_mode",
		}),
	}).Create(&settings).Error
}

// UpsertArchiveSettings inserts or updates the guild's archive
// configuration.
func UpsertArchiveSettings(settings models.GuildSettings, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"archive_enabled", "archive_folder_url",
		}),
	}).Create(&settings).Error
}

// ListSettingsWithAnnouncementChannel returns the settings of every guild
// that has an announcement channel configured.
func ListSettingsWithAnnouncementChannel(db *gorm.DB) ([]models.GuildSettings, error) {
	var settings []models.GuildSettings
	err := db.Where("announcement_channel_id <> ''").Find(&settings).Error
	return settings, err
}
