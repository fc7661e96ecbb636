package archive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/foopis23/art-of-the-week/models"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GoogleDrive archives submissions into Google Drive folders using a
// service account.
type GoogleDrive struct {
	service *drive.Service
	client  *http.Client
}

// NewGoogleDrive creates a Drive-backed strategy from a service account
// credentials file.
func NewGoogleDrive(ctx context.Context, credentialsFile string) (*GoogleDrive, error) {
	service, err := drive.NewService(
		ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &GoogleDrive{
		service: service,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// CreateJamFolder creates the per-jam folder under the guild's parent
// folder.
func (g *GoogleDrive) CreateJamFolder(
	theme string,
	jamCreatedAt time.Time,
	parentFolderID string,
) (string, error) {
	folder, err := g.service.Files.Create(&drive.File{
		Name:     FolderName(theme, jamCreatedAt),
		MimeType: folderMimeType,
		Parents:  []string{parentFolderID},
	}).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("create jam folder: %w", err)
	}
	return folder.Id, nil
}

// UploadAttachment downloads the attachment and uploads it into the given
// folder, named after the submitter.
func (g *GoogleDrive) UploadAttachment(
	attachment models.SubmissionAttachment,
	uploaderName string,
	folderID string,
) (string, error) {
	resp, err := g.client.Get(attachment.URL)
	if err != nil {
		return "", fmt.Errorf("fetch attachment %v: %w", attachment.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch attachment %v: unexpected status %v", attachment.Name, resp.Status)
	}

	file, err := g.service.Files.Create(&drive.File{
		Name:    fmt.Sprintf("%v - %v", uploaderName, attachment.Name),
		Parents: []string{folderID},
	}).Media(resp.Body, googleapi.ContentType(attachment.ContentType)).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("upload attachment %v: %w", attachment.Name, err)
	}

	return file.Id, nil
}
