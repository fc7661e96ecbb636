package models

import "time"

// Streak tracking modes.
const (
	StreaksDisabled     = "disabled"
	StreaksStreaks      = "streaks"
	StreaksAccumulative = "accumulative"
)

// GuildSettings is the per-guild configuration row. A default row is
// created lazily on first access, not pre-seeded on guild join.
type GuildSettings struct {
	GuildID               string `gorm:"primaryKey"`
	AnnouncementChannelID string
	// AnnouncementDay is stored for per-guild scheduling; announcements
	// currently run on the global cron regardless of this value.
	AnnouncementDay  string `gorm:"default:MON"`
	ArchiveEnabled   bool
	ArchiveFolderURL string
	StreaksMode      string `gorm:"default:disabled"`
	CreatedAt        time.Time
}
