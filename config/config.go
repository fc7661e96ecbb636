package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the bot.
type Config struct {
	Discord DiscordConfig
	DB      DBConfig
	Jobs    JobsConfig
	Archive ArchiveConfig
	Logging LoggingConfig
}

// DiscordConfig holds the bot token and optional test guild id. When
// GuildID is empty, slash commands are registered globally.
type DiscordConfig struct {
	BotToken string
	GuildID  string
}

// DBConfig holds the sqlite database path.
type DBConfig struct {
	Path string
}

// JobsConfig holds the cron expressions driving the jam cadence. These
// are configuration, not invariants; the defaults announce Monday noon
// with a Sunday 23:59 deadline, remind Thursday noon and recap Monday
// morning before the next announcement.
type JobsConfig struct {
	AnnounceCron string
	ReminderCron string
	RecapCron    string
	DeadlineCron string
}

// ArchiveConfig holds the Google Drive service account credentials path.
// Empty disables the archive integration entirely.
type ArchiveConfig struct {
	CredentialsFile string
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables, reading a .env
// file first if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Discord: DiscordConfig{
			BotToken: getEnv("DISCORD_BOT_TOKEN", ""),
			GuildID:  getEnv("DISCORD_GUILD_ID", ""),
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "art-of-the-week.db"),
		},
		Jobs: JobsConfig{
			AnnounceCron: getEnv("JAM_ANNOUNCE_CRON", "0 12 * * MON"),
			ReminderCron: getEnv("JAM_REMINDER_CRON", "0 12 * * THU"),
			RecapCron:    getEnv("JAM_RECAP_CRON", "0 9 * * MON"),
			DeadlineCron: getEnv("JAM_DEADLINE_CRON", "59 23 * * SUN"),
		},
		Archive: ArchiveConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Discord.BotToken == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
