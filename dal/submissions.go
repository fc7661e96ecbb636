package dal

import (
	"github.com/foopis23/art-of-the-week/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateSubmission persists a submission and its attachments as one unit.
// A failed attachment insert rolls back the submission row too.
func CreateSubmission(submission *models.Submission, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(submission).Error
	})
}

// SubmissionsForJam returns every submission for the jam, attachments
// included, oldest first.
func SubmissionsForJam(jamID string, db *gorm.DB) ([]models.Submission, error) {
	var submissions []models.Submission
	err := db.Preload("Attachments").
		Where("jam_id = ?", jamID).
		Order("created_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// JamIDsWithSubmissionByUser returns the distinct jam ids the user has
// submitted to.
func JamIDsWithSubmissionByUser(userID string, db *gorm.DB) ([]string, error) {
	var jamIDs []string
	err := db.Model(&models.Submission{}).
		Distinct("jam_id").
		Where("user_id = ?", userID).
		Pluck("jam_id", &jamIDs).Error
	return jamIDs, err
}

// UpsertAttachmentGuildFile records the archive file id for one
// attachment in one guild's folder, keyed on (attachment_id, guild_id).
func UpsertAttachmentGuildFile(file models.AttachmentGuildFile, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attachment_id"}, {Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"archive_file_id"}),
	}).Create(&file).Error
}
