// Package database holds the identity and infraction store backed by sqlite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// WatchtowerStore wraps the watchtower database. It satisfies the resolver's
// IdentityStore read contract and records infractions.
type WatchtowerStore struct {
	db *sqlx.DB
}

// InitWatchtowerStore opens the watchtower database and ensures the tables
// exist.
func InitWatchtowerStore(dbPath string) (*WatchtowerStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to watchtower database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS users (
	          steamid TEXT NOT NULL DEFAULT '',
	          discordid TEXT NOT NULL DEFAULT '',
	          ign TEXT NOT NULL DEFAULT '',
	          total_points INTEGER NOT NULL DEFAULT 0
	      );
	      CREATE TABLE IF NOT EXISTS infractions (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          steamid TEXT NOT NULL DEFAULT '',
	          discordid TEXT NOT NULL DEFAULT '',
	          reason TEXT NOT NULL,
	          timestamp INTEGER NOT NULL
	      );`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create watchtower tables: %w", err)
	}

	return &WatchtowerStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *WatchtowerStore) Close() error {
	return s.db.Close()
}

// LookupByDiscordID returns the steam id and in-game name linked to a Discord
// account. found is false when the account is not in the users table.
func (s *WatchtowerStore) LookupByDiscordID(discordID string) (string, string, bool, error) {
	var row struct {
		SteamID string `db:"steamid"`
		IGN     string `db:"ign"`
	}
	err := s.db.Get(&row, "SELECT steamid, ign FROM users WHERE discordid = ?", discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to look up user by discord id %s: %w", discordID, err)
	}
	return row.SteamID, row.IGN, true, nil
}

// LookupBySteamID returns the Discord account and in-game name linked to a
// steam id.
func (s *WatchtowerStore) LookupBySteamID(steamID string) (string, string, bool, error) {
	var row struct {
		DiscordID string `db:"discordid"`
		IGN       string `db:"ign"`
	}
	err := s.db.Get(&row, "SELECT discordid, ign FROM users WHERE steamid = ?", steamID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to look up user by steam id %s: %w", steamID, err)
	}
	return row.DiscordID, row.IGN, true, nil
}

// CountInfractionsBySteamID counts prior infractions for a steam id. An empty
// reason counts infractions for any reason.
func (s *WatchtowerStore) CountInfractionsBySteamID(steamID, reason string) (int, error) {
	var count int
	var err error
	if reason == "" {
		err = s.db.Get(&count, "SELECT COUNT(*) FROM infractions WHERE steamid = ?", steamID)
	} else {
		err = s.db.Get(&count, "SELECT COUNT(*) FROM infractions WHERE steamid = ? AND reason = ?", steamID, reason)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count infractions for steam id %s: %w", steamID, err)
	}
	return count, nil
}

// CountInfractionsByDiscordID counts prior infractions for a Discord id.
func (s *WatchtowerStore) CountInfractionsByDiscordID(discordID, reason string) (int, error) {
	var count int
	var err error
	if reason == "" {
		err = s.db.Get(&count, "SELECT COUNT(*) FROM infractions WHERE discordid = ?", discordID)
	} else {
		err = s.db.Get(&count, "SELECT COUNT(*) FROM infractions WHERE discordid = ? AND reason = ?", discordID, reason)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count infractions for discord id %s: %w", discordID, err)
	}
	return count, nil
}

// TotalPointsBySteamID returns the accumulated points balance for a steam id,
// zero when the account is unknown.
func (s *WatchtowerStore) TotalPointsBySteamID(steamID string) (int, error) {
	var points int
	err := s.db.Get(&points, "SELECT total_points FROM users WHERE steamid = ?", steamID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get total points for steam id %s: %w", steamID, err)
	}
	return points, nil
}

// TotalPointsByDiscordID returns the accumulated points balance for a Discord
// id, zero when the account is unknown.
func (s *WatchtowerStore) TotalPointsByDiscordID(discordID string) (int, error) {
	var points int
	err := s.db.Get(&points, "SELECT total_points FROM users WHERE discordid = ?", discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get total points for discord id %s: %w", discordID, err)
	}
	return points, nil
}

// InsertInfraction appends one infraction record. The table is append-only;
// each insert is its own atomic unit and a failure never rolls back earlier
// lines of the same paste.
func (s *WatchtowerStore) InsertInfraction(steamID, discordID, reason string, timestamp int64) error {
	_, err := s.db.Exec(
		"INSERT INTO infractions (steamid, discordid, reason, timestamp) VALUES (?, ?, ?, ?)",
		steamID, discordID, reason, timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert infraction record: %w", err)
	}
	return nil
}

// InsertLinkedUser creates a users row linking a steam account to a Discord
// account. Rows are written by the external account-link flow; the bot itself
// only reads them, so this is exposed for tooling and tests.
func (s *WatchtowerStore) InsertLinkedUser(steamID, discordID, ign string, totalPoints int) error {
	_, err := s.db.Exec(
		"INSERT INTO users (steamid, discordid, ign, total_points) VALUES (?, ?, ?, ?)",
		steamID, discordID, ign, totalPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to insert linked user: %w", err)
	}
	return nil
}
