package dal

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/foopis23/art-of-the-week/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := InitDB(fmt.Sprintf("file:%v?mode=memory&cache=shared", name))
	require.NoError(t, err)
	return db
}

func TestDrawUnusedThemeSeedsEmptyPool(t *testing.T) {
	db := testDB(t)

	theme, err := DrawUnusedTheme("", db)
	require.NoError(t, err)
	require.Contains(t, DefaultThemePool, theme.Theme)
}

func TestDrawUnusedThemeExcludesUsedUntilExhaustion(t *testing.T) {
	db := testDB(t)
	pool := []string{"alpha", "beta", "gamma", "delta"}
	require.NoError(t, SeedThemes("guild-1", pool, db))

	drawn := make(map[string]bool)
	for range pool {
		theme, err := DrawUnusedTheme("guild-1", db)
		require.NoError(t, err)
		require.Contains(t, pool, theme.Theme)
		require.False(t, drawn[theme.Theme], "theme %v drawn twice before exhaustion", theme.Theme)
		drawn[theme.Theme] = true
		require.NoError(t, MarkThemeUsed("guild-1", theme.Theme, db))
	}

	// pool exhausted: the next draw resets usage instead of failing
	theme, err := DrawUnusedTheme("guild-1", db)
	require.NoError(t, err)
	require.Contains(t, pool, theme.Theme)

	var count int64
	require.NoError(t, db.Model(&models.Theme{}).Where("scope_id = ?", "guild-1").Count(&count).Error)
	require.EqualValues(t, len(pool), count, "reset must not delete themes")
}

func TestThemePoolsAreScoped(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedThemes("guild-1", []string{"only-one"}, db))

	theme, err := DrawUnusedTheme("guild-1", db)
	require.NoError(t, err)
	require.Equal(t, "only-one", theme.Theme)

	// drawing from another scope seeds that scope's own pool
	other, err := DrawUnusedTheme("guild-2", db)
	require.NoError(t, err)
	require.Contains(t, DefaultThemePool, other.Theme)
}

func TestUpsertGuildJamKeepsOneRow(t *testing.T) {
	db := testDB(t)
	jam := models.Jam{Theme: "alpha", Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, CreateJam(&jam, db))

	require.NoError(t, UpsertGuildJam(models.GuildJam{
		GuildID:     "guild-1",
		JamID:       jam.ID,
		MessageID:   "msg-1",
		MessageLink: "link-1",
	}, db))
	require.NoError(t, UpsertGuildJam(models.GuildJam{
		GuildID:     "guild-1",
		JamID:       jam.ID,
		MessageID:   "msg-2",
		MessageLink: "link-2",
	}, db))

	var count int64
	require.NoError(t, db.Model(&models.GuildJam{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	guildJam, err := GetGuildJam("guild-1", jam.ID, db)
	require.NoError(t, err)
	require.Equal(t, "msg-2", guildJam.MessageID)
	require.Equal(t, "link-2", guildJam.MessageLink)
	require.Equal(t, "alpha", guildJam.Jam.Theme)
}

func TestGetGuildJamByMessageID(t *testing.T) {
	db := testDB(t)
	jam := models.Jam{Theme: "alpha", Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, CreateJam(&jam, db))
	require.NoError(t, UpsertGuildJam(models.GuildJam{
		GuildID:   "guild-1",
		JamID:     jam.ID,
		MessageID: "msg-1",
	}, db))

	guildJam, err := GetGuildJamByMessageID("msg-1", db)
	require.NoError(t, err)
	require.Equal(t, jam.ID, guildJam.JamID)

	_, err = GetGuildJamByMessageID("unknown", db)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCurrentJamRequiresFutureDeadline(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	past := models.Jam{Theme: "old", Deadline: now.Add(-time.Hour), CreatedAt: now.Add(-8 * 24 * time.Hour)}
	require.NoError(t, CreateJam(&past, db))

	_, err := CurrentJam(now, db)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	latest, err := LatestJam(db)
	require.NoError(t, err)
	require.Equal(t, past.ID, latest.ID)

	active := models.Jam{Theme: "new", Deadline: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, CreateJam(&active, db))

	current, err := CurrentJam(now, db)
	require.NoError(t, err)
	require.Equal(t, active.ID, current.ID)
}

func TestCreateSubmissionWithAttachments(t *testing.T) {
	db := testDB(t)
	jam := models.Jam{Theme: "alpha", Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, CreateJam(&jam, db))

	submission := models.Submission{
		UserID:   "user-1",
		Username: "artist",
		JamID:    jam.ID,
		Title:    "my piece",
		Attachments: []models.SubmissionAttachment{
			{Name: "a.png", URL: "https://cdn.example.com/a.png", ContentType: "image/png"},
			{Name: "b.png", URL: "https://cdn.example.com/b.png", ContentType: "image/png"},
		},
	}
	require.NoError(t, CreateSubmission(&submission, db))
	require.NotEmpty(t, submission.ID)

	submissions, err := SubmissionsForJam(jam.ID, db)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Len(t, submissions[0].Attachments, 2)
	for _, attachment := range submissions[0].Attachments {
		require.NotEmpty(t, attachment.ID)
		require.Equal(t, submission.ID, attachment.SubmissionID)
	}
}

func TestUpsertAttachmentGuildFile(t *testing.T) {
	db := testDB(t)

	file := models.AttachmentGuildFile{
		AttachmentID:  "att-1",
		GuildID:       "guild-1",
		ArchiveFileID: "file-1",
	}
	require.NoError(t, UpsertAttachmentGuildFile(file, db))
	file.ArchiveFileID = "file-2"
	require.NoError(t, UpsertAttachmentGuildFile(file, db))

	// same attachment in another guild is a separate upload
	require.NoError(t, UpsertAttachmentGuildFile(models.AttachmentGuildFile{
		AttachmentID:  "att-1",
		GuildID:       "guild-2",
		ArchiveFileID: "file-3",
	}, db))

	var files []models.AttachmentGuildFile
	require.NoError(t, db.Where("attachment_id = ?", "att-1").Find(&files).Error)
	require.Len(t, files, 2)

	var updated models.AttachmentGuildFile
	require.NoError(t, db.Where("attachment_id = ? AND guild_id = ?", "att-1", "guild-1").Take(&updated).Error)
	require.Equal(t, "file-2", updated.ArchiveFileID)
}

func TestGetGuildSettingsCreatesDefaultsLazily(t *testing.T) {
	db := testDB(t)

	settings, err := GetGuildSettings("guild-1", db)
	require.NoError(t, err)
	require.Equal(t, "MON", settings.AnnouncementDay)
	require.Equal(t, models.StreaksDisabled, settings.StreaksMode)
	require.Empty(t, settings.AnnouncementChannelID)

	var count int64
	require.NoError(t, db.Model(&models.GuildSettings{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	again, err := GetGuildSettings("guild-1", db)
	require.NoError(t, err)
	require.Equal(t, settings.GuildID, again.GuildID)
	require.NoError(t, db.Model(&models.GuildSettings{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestListSettingsWithAnnouncementChannel(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.GuildSettings{GuildID: "guild-1", AnnouncementChannelID: "chan-1"}).Error)
	require.NoError(t, db.Create(&models.GuildSettings{GuildID: "guild-2"}).Error)

	settings, err := ListSettingsWithAnnouncementChannel(db)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	require.Equal(t, "guild-1", settings[0].GuildID)
}

func TestUpsertGeneralSettingsPreservesArchiveConfig(t *testing.T) {
	db := testDB(t)
	require.NoError(t, UpsertArchiveSettings(models.GuildSettings{
		GuildID:          "guild-1",
		ArchiveEnabled:   true,
		ArchiveFolderURL: "https://drive.google.com/drive/folders/abc",
	}, db))

	require.NoError(t, UpsertGeneralSettings(models.GuildSettings{
		GuildID:               "guild-1",
		AnnouncementChannelID: "chan-1",
		AnnouncementDay:       "TUE",
		StreaksMode:           models.StreaksStreaks,
	}, db))

	settings, err := GetGuildSettings("guild-1", db)
	require.NoError(t, err)
	require.Equal(t, "chan-1", settings.AnnouncementChannelID)
	require.True(t, settings.ArchiveEnabled)
	require.Equal(t, "https://drive.google.com/drive/folders/abc", settings.ArchiveFolderURL)
}

func TestJamIDsWithSubmissionByUser(t *testing.T) {
	db := testDB(t)
	jam := models.Jam{Theme: "alpha", Deadline: time.Now().Add(time.Hour)}
	require.NoError(t, CreateJam(&jam, db))

	for i := 0; i < 2; i++ {
		submission := models.Submission{
			UserID: "user-1",
			JamID:  jam.ID,
			Attachments: []models.SubmissionAttachment{
				{Name: "a.png", URL: "https://cdn.example.com/a.png"},
			},
		}
		require.NoError(t, CreateSubmission(&submission, db))
	}

	jamIDs, err := JamIDsWithSubmissionByUser("user-1", db)
	require.NoError(t, err)
	require.Equal(t, []string{jam.ID}, jamIDs)
}
