package model

import "time"

// Config stores the application configuration. It is built once at startup by
// config.Load and passed explicitly into the components that need it.
type Config struct {
	BotToken string
	AppID    string
	GuildID  string // guild to register commands in; empty registers globally

	LogChannelID        string
	WatchtowerChannelID string

	AdminRoleIDs     []string
	DeveloperUserIDs []string

	PointsAPIURL   string
	PointsAPIToken string
	CatboxUserhash string

	DatabasePath string

	PasteTimeout        time.Duration
	HTTPTimeout         time.Duration
	AttachmentBatchSize int

	MaxAttachmentBytes int64 // attachments at or above this size are never downloaded
	InlineMaxBytes     int64 // ceiling for the direct-attachment fallback
}
