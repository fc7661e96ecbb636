package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foopis23/art-of-the-week/archive"
	"github.com/foopis23/art-of-the-week/config"
	"github.com/foopis23/art-of-the-week/discordutils"
	"github.com/foopis23/art-of-the-week/jam"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type commandHandler = func(*discordgo.InteractionCreate)

// Bot is an instance of the art-of-the-week discord bot.
type Bot struct {
	session            *discordgo.Session
	db                 *gorm.DB
	service            *jam.Service
	log                zerolog.Logger
	cron               *cron.Cron
	guildID            string
	registeredCommands []*discordgo.ApplicationCommand
	commandHandlers    map[string]commandHandler
}

// New initialises the bot: session, jam service, slash commands and
// scheduled jobs.
func New(
	cfg *config.Config,
	db *gorm.DB,
	archives archive.Factory,
	log zerolog.Logger,
) (*Bot, error) {
	bot := &Bot{
		db:      db,
		log:     log,
		guildID: cfg.Discord.GuildID,
	}

	bot.commandHandlers = map[string]commandHandler{
		"theme":    bot.Theme,
		"settings": bot.Settings,
		"streak":   bot.Streak,
	}

	if err := bot.initSession(cfg.Discord.BotToken); err != nil {
		return nil, err
	}

	service, err := jam.NewService(
		db,
		sessionMessenger{bot.session},
		archives,
		log,
		cfg.Jobs.DeadlineCron,
	)
	if err != nil {
		bot.session.Close()
		return nil, err
	}
	bot.service = service

	if err := bot.registerCommands(); err != nil {
		bot.session.Close()
		return nil, err
	}

	if err := bot.startJobs(cfg.Jobs); err != nil {
		bot.Shutdown()
		return nil, err
	}

	return bot, nil
}

func (bot *Bot) initSession(token string) error {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	session.AddHandler(func(*discordgo.Session, *discordgo.Ready) {
		bot.log.Info().Msg("Bot is up!")
	})

	session.AddHandler(func(
		_ *discordgo.Session,
		i *discordgo.InteractionCreate,
	) {
		bot.dispatchInteraction(i)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	bot.session = session
	return nil
}

// dispatchInteraction routes an interaction to its handler. A panicking
// handler is recovered, logged and answered with a generic failure so the
// process never dies to a bad interaction.
func (bot *Bot) dispatchInteraction(i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			bot.log.Error().Interface("panic", r).Msg("interaction handler panicked")
			discordutils.SendFollowup(
				fmt.Sprintf("Something went wrong handling that: %v", r),
				i.Interaction,
				bot.session,
			)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := bot.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(i)
		}
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == jam.SubmitButtonID {
			bot.showSubmissionModal(i)
		}
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		switch {
		case strings.HasPrefix(data.CustomID, jam.SubmissionModalPrefix):
			bot.handleSubmissionModal(i, data)
		case data.CustomID == settingsGeneralModalID:
			bot.handleGeneralSettingsModal(i, data)
		case data.CustomID == settingsDriveModalID:
			bot.handleDriveSettingsModal(i, data)
		}
	}
}

func (bot *Bot) registerCommands() error {
	for _, command := range botCommands {
		newCommand, err := bot.session.ApplicationCommandCreate(
			bot.session.State.User.ID,
			bot.guildID,
			command,
		)
		if err != nil {
			return fmt.Errorf("create %v command: %w", command.Name, err)
		}
		bot.registeredCommands = append(bot.registeredCommands, newCommand)
		bot.log.Info().Str("command", command.Name).Msg("Created command.")
	}
	return nil
}

// startJobs schedules the jam lifecycle crons: announcement, midweek
// reminder and recap. Job errors are logged, never retried.
func (bot *Bot) startJobs(jobs config.JobsConfig) error {
	c := cron.New()

	schedule := func(name, spec string, run func() error) error {
		_, err := c.AddFunc(spec, func() {
			if err := run(); err != nil {
				bot.log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %v (%q): %w", name, spec, err)
		}
		return nil
	}

	if err := schedule("generate-jam", jobs.AnnounceCron, bot.service.GenerateJam); err != nil {
		return err
	}
	if err := schedule("midweek-reminder", jobs.ReminderCron, bot.service.SendMidweekReminders); err != nil {
		return err
	}
	if err := schedule("jam-recap", jobs.RecapCron, bot.service.SendRecaps); err != nil {
		return err
	}

	c.Start()
	bot.cron = c
	return nil
}

// Shutdown shuts down the bot cleanly.
func (bot *Bot) Shutdown() {
	bot.log.Info().Msg("Shutting down.")

	if bot.cron != nil {
		bot.cron.Stop()
	}

	for _, command := range bot.registeredCommands {
		err := bot.session.ApplicationCommandDelete(
			bot.session.State.User.ID,
			bot.guildID,
			command.ID,
		)
		if err != nil {
			bot.log.Error().Err(err).Str("command", command.Name).Msg("Failed to delete command.")
		} else {
			bot.log.Info().Str("command", command.Name).Msg("Deleted command.")
		}
	}

	bot.session.Close()
}

// sessionMessenger adapts the discord session to the orchestrator's
// Messenger interface.
type sessionMessenger struct {
	session *discordgo.Session
}

func (m sessionMessenger) SendChannelMessage(
	guildID, channelID string,
	msg *discordgo.MessageSend,
) (*discordgo.Message, error) {
	return m.session.ChannelMessageSendComplex(channelID, msg)
}

func (m sessionMessenger) DeleteMessage(channelID, messageID string) error {
	return m.session.ChannelMessageDelete(channelID, messageID)
}

func (m sessionMessenger) GuildsInCommonWithUser(userID string) ([]string, error) {
	return discordutils.GuildsInCommonWithUser(m.session, userID)
}
