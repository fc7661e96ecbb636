package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Theme is a candidate theme in a scope's theme pool. A nil UsedAt means
// the theme has not been drawn since the pool was last reset.
type Theme struct {
	gorm.Model
	ScopeID string `gorm:"index;uniqueIndex:idx_scope_theme"` // guild id, or "" for the global pool
	Theme   string `gorm:"not null;uniqueIndex:idx_scope_theme"`
	UsedAt  *time.Time
}

// Jam is one weekly theme cycle. Theme and Deadline are immutable once
// the jam has been created.
type Jam struct {
	ID        string `gorm:"primaryKey"`
	Theme     string `gorm:"not null"`
	Deadline  time.Time
	CreatedAt time.Time
}

func (j *Jam) BeforeCreate(*gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// GuildJam binds a jam to the announcement message sent in one guild.
// Unique on (guild, jam) so re-announcing updates rather than duplicates.
type GuildJam struct {
	gorm.Model
	GuildID         string `gorm:"uniqueIndex:idx_guild_jam"`
	JamID           string `gorm:"uniqueIndex:idx_guild_jam"`
	Jam             Jam    `gorm:"foreignKey:JamID"`
	MessageID       string `gorm:"index"`
	MessageLink     string
	ArchiveFolderID string // populated lazily, "" until the first archival for this guild-jam
}

// Submission is one user's entry for a jam, with its attachments.
type Submission struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"index"`
	Username      string
	JamID         string `gorm:"index"`
	Title         string
	Description   string
	ShareGlobally bool
	ShareGuilds   bool
	CreatedAt     time.Time
	Attachments   []SubmissionAttachment `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

func (s *Submission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type SubmissionAttachment struct {
	ID           string `gorm:"primaryKey"`
	SubmissionID string `gorm:"index"`
	Name         string
	URL          string
	ContentType  string
	CreatedAt    time.Time
}

func (a *SubmissionAttachment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AttachmentGuildFile records the archive file id of one attachment in
// one guild's folder. The same attachment may be archived into several
// guild folders, one physical upload each.
type AttachmentGuildFile struct {
	gorm.Model
	AttachmentID  string `gorm:"uniqueIndex:idx_attachment_guild"`
	GuildID       string `gorm:"uniqueIndex:idx_attachment_guild"`
	ArchiveFileID string
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Theme{},
		&Jam{},
		&GuildJam{},
		&Submission{},
		&SubmissionAttachment{},
		&AttachmentGuildFile{},
		&GuildSettings{},
	}
}
