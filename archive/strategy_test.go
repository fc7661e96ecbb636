package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/foopis23/art-of-the-week/models"
	"github.com/stretchr/testify/require"
)

func TestParseFolderID(t *testing.T) {
	id, err := ParseFolderID("https://drive.example.com/drive/folders/ABC123?x=1")
	require.NoError(t, err)
	require.Equal(t, "ABC123", id)

	id, err = ParseFolderID("https://drive.google.com/drive/folders/1a2b3c/view")
	require.NoError(t, err)
	require.Equal(t, "1a2b3c", id)

	_, err = ParseFolderID("https://drive.google.com/my-drive")
	require.ErrorIs(t, err, ErrInvalidFolderURL)
}

func TestFolderName(t *testing.T) {
	created := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "03/05/26 - Tiny Giants", FolderName("Tiny Giants", created))
}

type stubStrategy struct{}

func (stubStrategy) CreateJamFolder(string, time.Time, string) (string, error) {
	return "folder", nil
}

func (stubStrategy) UploadAttachment(models.SubmissionAttachment, string, string) (string, error) {
	return "file", nil
}

func TestFactory(t *testing.T) {
	factory := NewFactory(stubStrategy{})

	// archival disabled is a valid nil, not an error
	strategy, parent, err := factory(models.GuildSettings{GuildID: "guild-1"})
	require.NoError(t, err)
	require.Nil(t, strategy)
	require.Empty(t, parent)

	// enabled without a folder URL is a configuration error
	_, _, err = factory(models.GuildSettings{GuildID: "guild-1", ArchiveEnabled: true})
	require.ErrorIs(t, err, ErrUnconfigured)

	// malformed URL
	_, _, err = factory(models.GuildSettings{
		GuildID:          "guild-1",
		ArchiveEnabled:   true,
		ArchiveFolderURL: "https://example.com/nope",
	})
	require.ErrorIs(t, err, ErrInvalidFolderURL)

	strategy, parent, err = factory(models.GuildSettings{
		GuildID:          "guild-1",
		ArchiveEnabled:   true,
		ArchiveFolderURL: "https://drive.google.com/drive/folders/ABC123",
	})
	require.NoError(t, err)
	require.NotNil(t, strategy)
	require.Equal(t, "ABC123", parent)
}

func TestFactoryWithoutBackend(t *testing.T) {
	factory := NewFactory(nil)

	strategy, _, err := factory(models.GuildSettings{GuildID: "guild-1"})
	require.NoError(t, err)
	require.Nil(t, strategy)

	_, _, err = factory(models.GuildSettings{
		GuildID:          "guild-1",
		ArchiveEnabled:   true,
		ArchiveFolderURL: "https://drive.google.com/drive/folders/ABC123",
	})
	require.True(t, errors.Is(err, ErrUnconfigured))
}
