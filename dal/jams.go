package dal

import (
	"time"

	"github.com/foopis23/art-of-the-week/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateJam persists a new jam, filling in its generated id.
func CreateJam(jam *models.Jam, db *gorm.DB) error {
	return db.Create(jam).Error
}

// CurrentJam returns the most recent jam whose deadline is still ahead of
// the given time.
func CurrentJam(now time.Time, db *gorm.DB) (*models.Jam, error) {
	var jam models.Jam
	err := db.Where("deadline > ?", now).
		Order("created_at DESC").
		Take(&jam).Error
	if err != nil {
		return nil, err
	}
	return &jam, nil
}

// LatestJam returns the most recently created jam regardless of deadline.
func LatestJam(db *gorm.DB) (*models.Jam, error) {
	var jam models.Jam
	err := db.Order("created_at DESC").Take(&jam).Error
	if err != nil {
		return nil, err
	}
	return &jam, nil
}

// ListJams returns all jams, newest first.
func ListJams(db *gorm.DB) ([]models.Jam, error) {
	var jams []models.Jam
	err := db.Order("created_at DESC").Find(&jams).Error
	return jams, err
}

// UpsertGuildJam inserts or updates the announcement binding for the
// guild jam's (guild_id, jam_id) key.
func UpsertGuildJam(guildJam models.GuildJam, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "jam_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_id", "message_link"}),
	}).Create(&guildJam).Error
}

// SetGuildJamArchiveFolder records the archive folder created for the
// given guild jam.
func SetGuildJamArchiveFolder(guildID, jamID, folderID string, db *gorm.DB) error {
	return db.Model(&models.GuildJam{}).
		Where("guild_id = ? AND jam_id = ?", guildID, jamID).
		Update("archive_folder_id", folderID).Error
}

// GetGuildJam returns the binding for the given guild & jam.
func GetGuildJam(guildID, jamID string, db *gorm.DB) (*models.GuildJam, error) {
	var guildJam models.GuildJam
	err := db.Preload("Jam").
		Where("guild_id = ? AND jam_id = ?", guildID, jamID).
		Take(&guildJam).Error
	if err != nil {
		return nil, err
	}
	return &guildJam, nil
}

// GetGuildJamByMessageID resolves a binding from its announcement
// message id.
func GetGuildJamByMessageID(messageID string, db *gorm.DB) (*models.GuildJam, error) {
	var guildJam models.GuildJam
	err := db.Preload("Jam").
		Where("message_id = ?", messageID).
		Order("created_at DESC").
		Take(&guildJam).Error
	if err != nil {
		return nil, err
	}
	return &guildJam, nil
}
