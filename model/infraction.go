package model

// InfractionRecord represents a single infraction row in the database.
// The table is append-only: records are never updated or deleted by the bot.
type InfractionRecord struct {
	ID        int64  `db:"id"` // Primary Key, Auto-increment
	SteamID   string `db:"steamid"`
	DiscordID string `db:"discordid"`
	Reason    string `db:"reason"`
	Timestamp int64  `db:"timestamp"`
}

// LinkedUser is a row in the users table linking a steam account to a Discord
// account, with the accumulated penalty points tracked by the scoring service.
type LinkedUser struct {
	SteamID     string `db:"steamid"`
	DiscordID   string `db:"discordid"`
	IGN         string `db:"ign"`
	TotalPoints int    `db:"total_points"`
}
