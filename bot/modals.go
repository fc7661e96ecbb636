package bot

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foopis23/art-of-the-week/archive"
	"github.com/foopis23/art-of-the-week/dal"
	"github.com/foopis23/art-of-the-week/discordutils"
	"github.com/foopis23/art-of-the-week/jam"
	"github.com/foopis23/art-of-the-week/models"
)

const (
	settingsGeneralModalID = "settings_general"
	settingsDriveModalID   = "settings_drive"
)

func textInputRow(input discordgo.TextInput) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{input},
	}
}

// showSubmissionModal opens the submission form. The modal custom id
// embeds the announcement message id the button lives on, which is how
// the submission finds its jam later.
func (bot *Bot) showSubmissionModal(i *discordgo.InteractionCreate) {
	bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: jam.SubmissionModalPrefix + i.Message.ID,
			Title:    "Upload Submission",
			Components: []discordgo.MessageComponent{
				textInputRow(discordgo.TextInput{
					CustomID:    "attachments",
					Label:       "Attachment links (one per line)",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "https://cdn.discordapp.com/attachments/...",
					Required:    true,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "title",
					Label:    "Title (optional)",
					Style:    discordgo.TextInputShort,
					Required: false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "description",
					Label:    "Description (optional)",
					Style:    discordgo.TextInputParagraph,
					Required: false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "share_guilds",
					Label:    "Share with your other servers? (yes/no)",
					Style:    discordgo.TextInputShort,
					Value:    "yes",
					Required: false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "share_globally",
					Label:    "Share globally? (yes/no)",
					Style:    discordgo.TextInputShort,
					Value:    "no",
					Required: false,
				}),
			},
		},
	})
}

func (bot *Bot) handleSubmissionModal(
	i *discordgo.InteractionCreate,
	data discordgo.ModalSubmitInteractionData,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	messageID := strings.TrimPrefix(data.CustomID, jam.SubmissionModalPrefix)

	attachments, err := parseAttachmentLinks(discordutils.ModalInputValue(data, "attachments"))
	if err != nil {
		discordutils.SendFollowup(
			fmt.Sprintf("Couldn't read your attachment links: %v", err),
			i.Interaction,
			bot.session,
		)
		return
	}

	fields := jam.SubmissionFields{
		Title:         discordutils.ModalInputValue(data, "title"),
		Description:   discordutils.ModalInputValue(data, "description"),
		ShareGuilds:   parseYesNo(discordutils.ModalInputValue(data, "share_guilds")),
		ShareGlobally: parseYesNo(discordutils.ModalInputValue(data, "share_globally")),
		Attachments:   attachments,
	}
	author := jam.Author{
		ID:          i.Member.User.ID,
		DisplayName: discordutils.MemberDisplayName(i.Member),
	}

	var reply string

	err = bot.service.HandleSubmission(fields, messageID, author)
	switch {
	case errors.Is(err, jam.ErrBindingNotFound):
		reply = "That announcement isn't tracked anymore. Ask an admin to rerun `/theme`."
	case err != nil:
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to handle submission")
		reply = fmt.Sprintf("Failed to save your submission: %v", err)
	default:
		reply = "Submitted successfully."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// generalSettingsModal builds the general settings form. The day field is
// stored but announcements currently follow the global cron; the label
// says so until per-guild scheduling lands.
func generalSettingsModal(settings *models.GuildSettings) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: settingsGeneralModalID,
			Title:    "General Settings",
			Components: []discordgo.MessageComponent{
				textInputRow(discordgo.TextInput{
					CustomID:    "announcement_channel",
					Label:       "Announcement channel ID",
					Style:       discordgo.TextInputShort,
					Value:       settings.AnnouncementChannelID,
					Placeholder: "Right click a channel > Copy Channel ID",
					Required:    false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "announcement_day",
					Label:    "Announcement day (SUN-SAT, not used yet)",
					Style:    discordgo.TextInputShort,
					Value:    settings.AnnouncementDay,
					Required: false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "streaks_mode",
					Label:    "Streak mode (disabled/streaks/accumulative)",
					Style:    discordgo.TextInputShort,
					Value:    settings.StreaksMode,
					Required: false,
				}),
			},
		},
	}
}

func (bot *Bot) showGeneralSettingsModal(i *discordgo.InteractionCreate, settings *models.GuildSettings) {
	bot.session.InteractionRespond(i.Interaction, generalSettingsModal(settings))
}

func (bot *Bot) handleGeneralSettingsModal(
	i *discordgo.InteractionCreate,
	data discordgo.ModalSubmitInteractionData,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	day := strings.ToUpper(strings.TrimSpace(discordutils.ModalInputValue(data, "announcement_day")))
	if day == "" {
		day = "MON"
	}
	if !validDay(day) {
		discordutils.SendFollowup(
			fmt.Sprintf("%v isn't a day I know. Use SUN, MON, TUE, WED, THU, FRI or SAT.", day),
			i.Interaction,
			bot.session,
		)
		return
	}

	mode := strings.ToLower(strings.TrimSpace(discordutils.ModalInputValue(data, "streaks_mode")))
	if mode == "" {
		mode = models.StreaksDisabled
	}
	if mode != models.StreaksDisabled && mode != models.StreaksStreaks && mode != models.StreaksAccumulative {
		discordutils.SendFollowup(
			"Streak mode must be disabled, streaks or accumulative.",
			i.Interaction,
			bot.session,
		)
		return
	}

	err := dal.UpsertGeneralSettings(models.GuildSettings{
		GuildID:               i.GuildID,
		AnnouncementChannelID: strings.TrimSpace(discordutils.ModalInputValue(data, "announcement_channel")),
		AnnouncementDay:       day,
		StreaksMode:           mode,
	}, bot.db)

	var reply string
	if err != nil {
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to save settings")
		reply = fmt.Sprintf("Failed to save settings: %v", err)
	} else {
		reply = "Settings saved."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

func (bot *Bot) showDriveSettingsModal(i *discordgo.InteractionCreate, settings *models.GuildSettings) {
	enabled := "no"
	if settings.ArchiveEnabled {
		enabled = "yes"
	}

	bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: settingsDriveModalID,
			Title:    "Google Drive Settings",
			Components: []discordgo.MessageComponent{
				textInputRow(discordgo.TextInput{
					CustomID:    "folder_url",
					Label:       "Drive folder URL",
					Style:       discordgo.TextInputShort,
					Value:       settings.ArchiveFolderURL,
					Placeholder: "https://drive.google.com/drive/folders/...",
					Required:    false,
				}),
				textInputRow(discordgo.TextInput{
					CustomID: "enabled",
					Label:    "Archive submissions? (yes/no)",
					Style:    discordgo.TextInputShort,
					Value:    enabled,
					Required: false,
				}),
			},
		},
	})
}

func (bot *Bot) handleDriveSettingsModal(
	i *discordgo.InteractionCreate,
	data discordgo.ModalSubmitInteractionData,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	folderURL := strings.TrimSpace(discordutils.ModalInputValue(data, "folder_url"))
	enabled := parseYesNo(discordutils.ModalInputValue(data, "enabled"))

	if folderURL != "" {
		if _, err := archive.ParseFolderID(folderURL); err != nil {
			discordutils.SendFollowup(
				"That doesn't look like a Drive folder URL. It should contain a folders/<id> segment.",
				i.Interaction,
				bot.session,
			)
			return
		}
	}
	if enabled && folderURL == "" {
		discordutils.SendFollowup(
			"Archiving needs a Drive folder URL before it can be enabled.",
			i.Interaction,
			bot.session,
		)
		return
	}

	err := dal.UpsertArchiveSettings(models.GuildSettings{
		GuildID:          i.GuildID,
		ArchiveEnabled:   enabled,
		ArchiveFolderURL: folderURL,
	}, bot.db)

	var reply string
	if err != nil {
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to save drive settings")
		reply = fmt.Sprintf("Failed to save settings: %v", err)
	} else if enabled {
		reply = "Google Drive archiving enabled."
	} else {
		reply = "Google Drive archiving disabled."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

func parseYesNo(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true":
		return true
	}
	return false
}

func validDay(day string) bool {
	switch day {
	case "SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT":
		return true
	}
	return false
}

// parseAttachmentLinks turns the pasted link lines into attachment
// inputs, inferring each name and content type from the URL path.
func parseAttachmentLinks(raw string) ([]jam.AttachmentInput, error) {
	var attachments []jam.AttachmentInput

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed, err := url.Parse(line)
		if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("%q is not a valid link", line)
		}

		name := path.Base(parsed.Path)
		if name == "." || name == "/" {
			name = "attachment"
		}

		attachments = append(attachments, jam.AttachmentInput{
			Name:        name,
			URL:         line,
			ContentType: mime.TypeByExtension(path.Ext(name)),
		})
	}

	if len(attachments) == 0 {
		return nil, errors.New("no links found")
	}

	return attachments, nil
}
