// Package archive integrates external storage for jam submissions. The
// orchestrator only sees the Strategy interface; Google Drive is the one
// concrete backend today.
package archive

import (
	"errors"
	"regexp"
	"time"

	"github.com/foopis23/art-of-the-week/models"
)

var (
	// ErrUnconfigured means archival is enabled for a guild but no usable
	// parent folder is configured.
	ErrUnconfigured = errors.New("archive enabled but no folder configured")
	// ErrInvalidFolderURL means a user-supplied folder URL has no folder
	// id segment.
	ErrInvalidFolderURL = errors.New("folder URL has no folders/<id> segment")
)

// Strategy archives jam submissions to external storage.
type Strategy interface {
	// CreateJamFolder creates the per-jam folder under the guild's parent
	// folder and returns its id.
	CreateJamFolder(theme string, jamCreatedAt time.Time, parentFolderID string) (string, error)
	// UploadAttachment copies one attachment into the given folder and
	// returns the resulting file id.
	UploadAttachment(attachment models.SubmissionAttachment, uploaderName, folderID string) (string, error)
}

// Factory resolves the archive strategy and parent folder for a guild.
// A (nil, "", nil) return means archival is simply not enabled there.
type Factory func(settings models.GuildSettings) (Strategy, string, error)

// NewFactory builds a Factory over the given backend. A nil backend means
// no archive integration is available at all.
func NewFactory(backend Strategy) Factory {
	return func(settings models.GuildSettings) (Strategy, string, error) {
		if !settings.ArchiveEnabled {
			return nil, "", nil
		}
		if backend == nil || settings.ArchiveFolderURL == "" {
			return nil, "", ErrUnconfigured
		}
		parentID, err := ParseFolderID(settings.ArchiveFolderURL)
		if err != nil {
			return nil, "", err
		}
		return backend, parentID, nil
	}
}

var folderIDPattern = regexp.MustCompile(`folders/([^/?]+)`)

// ParseFolderID extracts the stable folder id from a user-supplied folder
// URL.
func ParseFolderID(url string) (string, error) {
	match := folderIDPattern.FindStringSubmatch(url)
	if match == nil {
		return "", ErrInvalidFolderURL
	}
	return match[1], nil
}

// FolderName renders the per-jam folder naming convention.
func FolderName(theme string, jamCreatedAt time.Time) string {
	return jamCreatedAt.Format("01/02/06") + " - " + theme
}
