package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	"watchtower-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load builds the configuration from environment variables and the optional
// data/watchtower.yaml tunables file, and validates it once at startup.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("watchtower")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("points_api_url", "http://127.0.0.1:5000/api/warn")
	v.SetDefault("database_path", "data/watchtower.db")
	v.SetDefault("paste_timeout_seconds", 1200)
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("attachment_batch_size", 10)
	v.SetDefault("max_attachment_bytes", int64(250*1024*1024))
	v.SetDefault("inline_max_bytes", int64(25*1024*1024))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("Info: data/watchtower.yaml not found, using defaults")
	}

	cfg := &model.Config{
		BotToken:            v.GetString("bot_token"),
		AppID:               v.GetString("app_id"),
		GuildID:             v.GetString("guild_id"),
		LogChannelID:        v.GetString("log_channel_id"),
		WatchtowerChannelID: v.GetString("watchtower_channel_id"),
		AdminRoleIDs:        splitIDs(v.GetString("admin_role_ids")),
		DeveloperUserIDs:    splitIDs(v.GetString("developer_user_ids")),
		PointsAPIURL:        v.GetString("points_api_url"),
		PointsAPIToken:      v.GetString("points_api_token"),
		CatboxUserhash:      v.GetString("catbox_userhash"),
		DatabasePath:        v.GetString("database_path"),
		PasteTimeout:        time.Duration(v.GetInt("paste_timeout_seconds")) * time.Second,
		HTTPTimeout:         time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
		AttachmentBatchSize: v.GetInt("attachment_batch_size"),
		MaxAttachmentBytes:  v.GetInt64("max_attachment_bytes"),
		InlineMaxBytes:      v.GetInt64("inline_max_bytes"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}
	if cfg.AppID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}
	if cfg.WatchtowerChannelID == "" {
		return nil, fmt.Errorf("WATCHTOWER_CHANNEL_ID environment variable not set")
	}
	if cfg.LogChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, log channel notifications disabled")
	}
	if cfg.PointsAPIToken == "" || cfg.PointsAPIToken == "CHANGE_ME" {
		log.Println("Warning: POINTS_API_TOKEN not set, point penalties will be skipped")
	}

	return cfg, nil
}

// splitIDs splits a comma-separated id list, dropping empty elements.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
