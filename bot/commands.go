package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/foopis23/art-of-the-week/dal"
	"github.com/foopis23/art-of-the-week/discordutils"
	"github.com/foopis23/art-of-the-week/jam"
	"github.com/foopis23/art-of-the-week/models"
)

var botCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "theme",
		Description: "Resend the current jam announcement for this server.",
	}, {
		Name:        "settings",
		Description: "Configure the bot for this server.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "general",
				Description: "Announcement channel, announcement day and streak mode.",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "google-drive",
				Description: "Google Drive submission archiving.",
			},
		},
	}, {
		Name:        "streak",
		Description: "Shows your jam participation streak or score.",
	},
}

// Theme force-regenerates the jam announcement for the invoking guild.
func (bot *Bot) Theme(i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		bot.replyEphemeral(i, "This command can only be used in a server.")
		return
	}

	discordutils.AckInteraction(i.Interaction, bot.session)

	var reply string

	err := bot.service.ResendAnnouncement(i.GuildID)
	switch {
	case errors.Is(err, jam.ErrChannelNotConfigured):
		reply = "No announcement channel is configured. An admin can set one with `/settings general`."
	case errors.Is(err, jam.ErrNoCurrentJam):
		reply = "There is no active jam right now."
	case err != nil:
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to resend announcement")
		reply = fmt.Sprintf("Failed to resend the announcement: %v", err)
	default:
		reply = "Successfully forced theme regeneration."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// Settings opens the requested configuration modal. Admin only.
func (bot *Bot) Settings(i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		bot.replyEphemeral(i, "This command can only be used in a server.")
		return
	}

	guild, err := bot.session.State.Guild(i.GuildID)
	if err != nil {
		bot.replyEphemeral(i, "I can't look up this server right now, try again later.")
		return
	}

	if !discordutils.MemberHasAdminPermissions(guild, i.Member) {
		bot.replyEphemeral(i, "Nice try.")
		return
	}

	settings, err := dal.GetGuildSettings(i.GuildID, bot.db)
	if err != nil {
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to load settings")
		bot.replyEphemeral(i, fmt.Sprintf("Failed to load settings: %v", err))
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		bot.replyEphemeral(i, "Pick a settings section.")
		return
	}

	switch data.Options[0].Name {
	case "general":
		bot.showGeneralSettingsModal(i, settings)
	case "google-drive":
		bot.showDriveSettingsModal(i, settings)
	}
}

// Streak reports the invoker's streak or accumulative score depending on
// the guild's streak mode.
func (bot *Bot) Streak(i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		bot.replyEphemeral(i, "This command can only be used in a server.")
		return
	}

	discordutils.AckInteraction(i.Interaction, bot.session)

	settings, err := dal.GetGuildSettings(i.GuildID, bot.db)
	if err != nil {
		bot.log.Error().Err(err).Str("guild", i.GuildID).Msg("failed to load settings")
		discordutils.SendFollowup(fmt.Sprintf("Failed to load settings: %v", err), i.Interaction, bot.session)
		return
	}

	var reply string

	switch settings.StreaksMode {
	case models.StreaksStreaks:
		streak, err := bot.service.UserStreak(i.Member.User.ID)
		if err != nil {
			reply = fmt.Sprintf("Failed to compute your streak: %v", err)
		} else {
			reply = fmt.Sprintf("You've submitted to the last %v jam(s) in a row.", streak)
		}
	case models.StreaksAccumulative:
		score, err := bot.service.UserAccumulativeScore(i.Member.User.ID)
		if err != nil {
			reply = fmt.Sprintf("Failed to compute your score: %v", err)
		} else {
			reply = fmt.Sprintf("Your jam score is %v points.", score)
		}
	default:
		reply = "Streak tracking is disabled on this server."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

func (bot *Bot) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	bot.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
