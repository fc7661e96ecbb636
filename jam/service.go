// Package jam drives the weekly art jam lifecycle: theme selection,
// per-guild announcement fan-out, submission intake and re-sharing,
// midweek reminders and end-of-week recaps.
package jam

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/foopis23/art-of-the-week/archive"
	"github.com/foopis23/art-of-the-week/dal"
	"github.com/foopis23/art-of-the-week/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// SubmissionScore is the fixed point value of submitting to one jam in
// accumulative mode. Multiple submissions in the same jam score once.
const SubmissionScore = 10

// GlobalScope is the theme pool scope shared by all guilds. Per-guild
// pools use the guild id as scope.
const GlobalScope = ""

var (
	ErrChannelNotConfigured = errors.New("no announcement channel configured")
	ErrNoCurrentJam         = errors.New("no current jam")
	ErrNoLatestJam          = errors.New("no jam has ever been generated")
	ErrBindingNotFound      = errors.New("no jam announcement found for message")
)

// Messenger is the narrow slice of the chat transport the orchestrator
// needs.
type Messenger interface {
	SendChannelMessage(guildID, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	DeleteMessage(channelID, messageID string) error
	GuildsInCommonWithUser(userID string) ([]string, error)
}

// Author identifies the user behind a submission.
type Author struct {
	ID          string
	DisplayName string
}

// AttachmentInput is one attachment of an incoming submission.
type AttachmentInput struct {
	Name        string
	URL         string
	ContentType string
}

// SubmissionFields are the values read back from the submission form.
type SubmissionFields struct {
	Title         string
	Description   string
	ShareGlobally bool
	ShareGuilds   bool
	Attachments   []AttachmentInput
}

// Service orchestrates the jam lifecycle. Jam state is never stored as a
// status enum; it is derived each run from the persisted jams, bindings
// and the clock.
type Service struct {
	db       *gorm.DB
	msg      Messenger
	archives archive.Factory
	log      zerolog.Logger
	deadline cron.Schedule
	now      func() time.Time
}

// NewService wires the orchestrator. deadlineSpec is a standard cron
// expression whose next firing after "now" becomes each new jam's
// deadline.
func NewService(
	db *gorm.DB,
	msg Messenger,
	archives archive.Factory,
	log zerolog.Logger,
	deadlineSpec string,
) (*Service, error) {
	schedule, err := cron.ParseStandard(deadlineSpec)
	if err != nil {
		return nil, fmt.Errorf("parse deadline cron %q: %w", deadlineSpec, err)
	}

	return &Service{
		db:       db,
		msg:      msg,
		archives: archives,
		log:      log,
		deadline: schedule,
		now:      time.Now,
	}, nil
}

// GenerateJam draws a theme, persists a new jam and announces it to every
// guild with an announcement channel configured. One guild's failure does
// not stop the fan-out to the rest.
func (s *Service) GenerateJam() error {
	theme, err := dal.DrawUnusedTheme(GlobalScope, s.db)
	if err != nil {
		return fmt.Errorf("draw theme: %w", err)
	}
	if err := dal.MarkThemeUsed(GlobalScope, theme.Theme, s.db); err != nil {
		return fmt.Errorf("mark theme used: %w", err)
	}

	deadline := s.deadline.Next(s.now())
	if deadline.IsZero() {
		return errors.New("failed to compute next deadline")
	}

	jam := models.Jam{Theme: theme.Theme, Deadline: deadline}
	if err := dal.CreateJam(&jam, s.db); err != nil {
		return fmt.Errorf("create jam: %w", err)
	}
	if jam.ID == "" {
		return errors.New("jam insert returned no id")
	}

	s.log.Info().Str("jam", jam.ID).Str("theme", jam.Theme).Time("deadline", deadline).Msg("generated jam")

	guilds, err := dal.ListSettingsWithAnnouncementChannel(s.db)
	if err != nil {
		return fmt.Errorf("list guilds to announce: %w", err)
	}

	for _, settings := range guilds {
		if err := s.AnnounceToGuild(&jam, &settings); err != nil {
			s.log.Error().Err(err).Str("guild", settings.GuildID).Msg("failed to announce jam")
		}
	}

	return nil
}

// AnnounceToGuild sends the jam announcement to one guild and upserts its
// (guild, jam) binding with the new message identity. If archival is
// enabled the jam folder is created best-effort; a folder failure never
// rolls back the announcement or the binding.
func (s *Service) AnnounceToGuild(jam *models.Jam, settings *models.GuildSettings) error {
	if settings.AnnouncementChannelID == "" {
		return ErrChannelNotConfigured
	}

	message, err := s.msg.SendChannelMessage(
		settings.GuildID,
		settings.AnnouncementChannelID,
		AnnouncementMessage(jam),
	)
	if err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}

	err = dal.UpsertGuildJam(models.GuildJam{
		GuildID:     settings.GuildID,
		JamID:       jam.ID,
		MessageID:   message.ID,
		MessageLink: messageLink(settings.GuildID, settings.AnnouncementChannelID, message.ID),
	}, s.db)
	if err != nil {
		return fmt.Errorf("upsert guild jam: %w", err)
	}

	if settings.ArchiveEnabled {
		if _, err := s.ensureArchiveFolder(jam, settings); err != nil {
			s.warnArchiveFailure(settings, err)
		}
	}

	return nil
}

// ResendAnnouncement re-announces the current jam for one guild, deleting
// the prior announcement message first. A failed delete aborts the
// resend.
func (s *Service) ResendAnnouncement(guildID string) error {
	settings, err := dal.GetGuildSettings(guildID, s.db)
	if err != nil {
		return fmt.Errorf("get guild settings: %w", err)
	}
	if settings.AnnouncementChannelID == "" {
		return ErrChannelNotConfigured
	}

	jam, err := dal.CurrentJam(s.now(), s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCurrentJam
		}
		return fmt.Errorf("get current jam: %w", err)
	}

	guildJam, err := dal.GetGuildJam(guildID, jam.ID, s.db)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("get guild jam: %w", err)
	}
	if guildJam != nil && guildJam.MessageID != "" {
		if err := s.msg.DeleteMessage(settings.AnnouncementChannelID, guildJam.MessageID); err != nil {
			return fmt.Errorf("delete old announcement: %w", err)
		}
	}

	return s.AnnounceToGuild(jam, settings)
}

// HandleSubmission correlates an inbound submission with the jam that was
// announced by sourceMessageID, persists it with its attachments as one
// unit, then re-shares it to the target guilds. Per-guild send and
// archive failures are isolated: every remaining guild is still
// processed.
func (s *Service) HandleSubmission(fields SubmissionFields, sourceMessageID string, author Author) error {
	guildJam, err := dal.GetGuildJamByMessageID(sourceMessageID, s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBindingNotFound
		}
		return fmt.Errorf("resolve guild jam: %w", err)
	}

	attachments := make([]models.SubmissionAttachment, len(fields.Attachments))
	for i, attachment := range fields.Attachments {
		attachments[i] = models.SubmissionAttachment{
			Name:        attachment.Name,
			URL:         attachment.URL,
			ContentType: attachment.ContentType,
		}
	}

	submission := models.Submission{
		UserID:        author.ID,
		Username:      author.DisplayName,
		JamID:         guildJam.JamID,
		Title:         fields.Title,
		Description:   fields.Description,
		ShareGlobally: fields.ShareGlobally,
		ShareGuilds:   fields.ShareGuilds,
		Attachments:   attachments,
	}
	if err := dal.CreateSubmission(&submission, s.db); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	if submission.ID == "" {
		return errors.New("submission insert returned no id")
	}

	targets := []string{guildJam.GuildID}
	if fields.ShareGuilds {
		shared, err := s.msg.GuildsInCommonWithUser(author.ID)
		if err != nil {
			return fmt.Errorf("list common guilds: %w", err)
		}
		targets = shared
	}

	for _, guildID := range dedupe(targets) {
		if err := s.shareSubmissionToGuild(guildID, &guildJam.Jam, &submission); err != nil {
			s.log.Error().Err(err).
				Str("guild", guildID).
				Str("submission", submission.ID).
				Msg("failed to share submission")
		}
	}

	return nil
}

func (s *Service) shareSubmissionToGuild(
	guildID string,
	jam *models.Jam,
	submission *models.Submission,
) error {
	settings, err := dal.GetGuildSettings(guildID, s.db)
	if err != nil {
		return fmt.Errorf("get guild settings: %w", err)
	}
	if settings.AnnouncementChannelID == "" {
		return nil
	}

	guildJam, err := dal.GetGuildJam(guildID, jam.ID, s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("get guild jam: %w", err)
	}

	_, err = s.msg.SendChannelMessage(
		guildID,
		settings.AnnouncementChannelID,
		SubmissionMessage(guildJam, submission),
	)
	if err != nil {
		return fmt.Errorf("send submission message: %w", err)
	}

	if settings.ArchiveEnabled {
		if err := s.archiveSubmission(guildJam, jam, settings, submission); err != nil {
			s.warnArchiveFailure(settings, err)
		}
	}

	return nil
}

// archiveSubmission uploads each attachment into the guild's per-jam
// folder, creating the folder on first use. Uploads run concurrently; a
// failed upload does not abort its siblings.
func (s *Service) archiveSubmission(
	guildJam *models.GuildJam,
	jam *models.Jam,
	settings *models.GuildSettings,
	submission *models.Submission,
) error {
	strategy, parentID, err := s.archives(*settings)
	if err != nil {
		return err
	}
	if strategy == nil {
		return nil
	}

	folderID := guildJam.ArchiveFolderID
	if folderID == "" {
		folderID, err = strategy.CreateJamFolder(jam.Theme, jam.CreatedAt, parentID)
		if err != nil {
			return fmt.Errorf("create jam folder: %w", err)
		}
		if err := dal.SetGuildJamArchiveFolder(guildJam.GuildID, jam.ID, folderID, s.db); err != nil {
			return fmt.Errorf("record jam folder: %w", err)
		}
	}

	var group errgroup.Group
	for _, attachment := range submission.Attachments {
		attachment := attachment
		group.Go(func() error {
			fileID, err := strategy.UploadAttachment(attachment, submission.Username, folderID)
			if err != nil {
				return fmt.Errorf("upload %v: %w", attachment.Name, err)
			}
			return dal.UpsertAttachmentGuildFile(models.AttachmentGuildFile{
				AttachmentID:  attachment.ID,
				GuildID:       guildJam.GuildID,
				ArchiveFileID: fileID,
			}, s.db)
		})
	}

	return group.Wait()
}

// ensureArchiveFolder creates and records the guild's per-jam folder if
// it does not exist yet, returning the folder id either way.
func (s *Service) ensureArchiveFolder(jam *models.Jam, settings *models.GuildSettings) (string, error) {
	guildJam, err := dal.GetGuildJam(settings.GuildID, jam.ID, s.db)
	if err != nil {
		return "", fmt.Errorf("get guild jam: %w", err)
	}
	if guildJam.ArchiveFolderID != "" {
		return guildJam.ArchiveFolderID, nil
	}

	strategy, parentID, err := s.archives(*settings)
	if err != nil {
		return "", err
	}
	if strategy == nil {
		return "", nil
	}

	folderID, err := strategy.CreateJamFolder(jam.Theme, jam.CreatedAt, parentID)
	if err != nil {
		return "", fmt.Errorf("create jam folder: %w", err)
	}
	if err := dal.SetGuildJamArchiveFolder(settings.GuildID, jam.ID, folderID, s.db); err != nil {
		return "", fmt.Errorf("record jam folder: %w", err)
	}

	return folderID, nil
}

// warnArchiveFailure surfaces an archive problem in the guild's
// announcement channel. Best effort; the jam proceeds without archival.
func (s *Service) warnArchiveFailure(settings *models.GuildSettings, cause error) {
	s.log.Warn().Err(cause).Str("guild", settings.GuildID).Msg("archive unavailable for guild")

	if settings.AnnouncementChannelID == "" {
		return
	}
	_, err := s.msg.SendChannelMessage(
		settings.GuildID,
		settings.AnnouncementChannelID,
		ArchiveWarningMessage(cause),
	)
	if err != nil {
		s.log.Error().Err(err).Str("guild", settings.GuildID).Msg("failed to send archive warning")
	}
}

// SendMidweekReminders sends the midweek reminder to every guild with a
// binding for the current jam. Guilds that never announced this jam are
// skipped silently.
func (s *Service) SendMidweekReminders() error {
	jam, err := dal.CurrentJam(s.now(), s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCurrentJam
		}
		return fmt.Errorf("get current jam: %w", err)
	}

	return s.fanOutToBoundGuilds(jam, func(guildJam *models.GuildJam) *discordgo.MessageSend {
		return ReminderMessage(guildJam)
	})
}

// SendRecaps sends the end-of-week recap for the latest jam to every
// guild with a binding for it. A jam with zero submissions produces a
// "no submissions" recap, not an error.
func (s *Service) SendRecaps() error {
	jam, err := dal.LatestJam(s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoLatestJam
		}
		return fmt.Errorf("get latest jam: %w", err)
	}

	submissions, err := dal.SubmissionsForJam(jam.ID, s.db)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	return s.fanOutToBoundGuilds(jam, func(guildJam *models.GuildJam) *discordgo.MessageSend {
		return RecapMessage(guildJam, submissions)
	})
}

// fanOutToBoundGuilds sends one templated message per guild that both has
// an announcement channel and announced the given jam. Send failures are
// isolated per guild.
func (s *Service) fanOutToBoundGuilds(
	jam *models.Jam,
	template func(*models.GuildJam) *discordgo.MessageSend,
) error {
	guilds, err := dal.ListSettingsWithAnnouncementChannel(s.db)
	if err != nil {
		return fmt.Errorf("list guilds: %w", err)
	}

	for _, settings := range guilds {
		guildJam, err := dal.GetGuildJam(settings.GuildID, jam.ID, s.db)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.log.Error().Err(err).Str("guild", settings.GuildID).Msg("failed to load guild jam")
			}
			continue
		}

		_, err = s.msg.SendChannelMessage(
			settings.GuildID,
			settings.AnnouncementChannelID,
			template(guildJam),
		)
		if err != nil {
			s.log.Error().Err(err).Str("guild", settings.GuildID).Msg("failed to send jam notification")
		}
	}

	return nil
}

// UserStreak counts the user's consecutive most-recent jams with at least
// one submission, stopping at the first gap.
func (s *Service) UserStreak(userID string) (int, error) {
	jams, err := dal.ListJams(s.db)
	if err != nil {
		return 0, err
	}
	submitted, err := s.jamsSubmittedBy(userID)
	if err != nil {
		return 0, err
	}

	streak := 0
	for _, jam := range jams {
		if !submitted[jam.ID] {
			break
		}
		streak++
	}
	return streak, nil
}

// UserAccumulativeScore scores SubmissionScore points per jam the user
// submitted to, regardless of how many submissions or attachments each
// jam received.
func (s *Service) UserAccumulativeScore(userID string) (int, error) {
	jams, err := dal.ListJams(s.db)
	if err != nil {
		return 0, err
	}
	submitted, err := s.jamsSubmittedBy(userID)
	if err != nil {
		return 0, err
	}

	score := 0
	for _, jam := range jams {
		if submitted[jam.ID] {
			score += SubmissionScore
		}
	}
	return score, nil
}

func (s *Service) jamsSubmittedBy(userID string) (map[string]bool, error) {
	jamIDs, err := dal.JamIDsWithSubmissionByUser(userID, s.db)
	if err != nil {
		return nil, err
	}
	submitted := make(map[string]bool, len(jamIDs))
	for _, id := range jamIDs {
		submitted[id] = true
	}
	return submitted, nil
}

func messageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%v/%v/%v", guildID, channelID, messageID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
