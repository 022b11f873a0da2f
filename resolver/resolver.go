// Package resolver reconciles a user-supplied identifier token against the
// identity store and decides repeat-offender status.
package resolver

import (
	"log"
	"regexp"
	"watchtower-bot/model"
)

// MinSteamIDLength is the minimum digit count for a token to be treated as a
// SteamID64 rather than a Discord id.
const MinSteamIDLength = 17

// IdentityStore is the read contract the resolver needs from the identity
// database. Implementations return found=false (not an error) when no row
// matches; errors are reserved for lookup failures.
type IdentityStore interface {
	LookupByDiscordID(discordID string) (steamID, ign string, found bool, err error)
	LookupBySteamID(steamID string) (discordID, ign string, found bool, err error)

	// CountInfractions* count prior infractions for an identity. An empty
	// reason counts infractions for any reason.
	CountInfractionsBySteamID(steamID, reason string) (int, error)
	CountInfractionsByDiscordID(discordID, reason string) (int, error)

	TotalPointsBySteamID(steamID string) (int, error)
	TotalPointsByDiscordID(discordID string) (int, error)
}

// NameProvider resolves a Discord user id to a human-readable display name.
type NameProvider interface {
	ResolveDisplayName(discordID string) (string, error)
}

var (
	mentionRegex  = regexp.MustCompile(`^<@!?(\d+)>$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// Resolve maps an identifier token (mention, SteamID64, short Discord id, or a
// dirty token containing a steam id) to a canonical Offender. It never fails:
// every lookup error is treated as "no data" and resolution continues, so the
// worst case is an Offender with all fields at their Unknown defaults.
func Resolve(store IdentityStore, names NameProvider, identifier, rule string) model.Offender {
	offender := model.Offender{
		SteamID:     model.UnknownValue,
		DiscordName: model.UnknownValue,
		IGN:         model.UnknownValue,
	}

	if m := mentionRegex.FindStringSubmatch(identifier); m != nil {
		offender.DiscordID = m[1]
		adoptByDiscordID(store, &offender)
		offender.DiscordName = lookupName(names, offender.DiscordID)
	} else if isDigits(identifier) {
		if len(identifier) >= MinSteamIDLength {
			offender.SteamID = identifier
			adoptBySteamID(store, names, &offender)
		} else {
			// Short numeric runs are Discord ids pasted without the mention
			// brackets.
			offender.DiscordID = identifier
			adoptByDiscordID(store, &offender)
			offender.DiscordName = lookupName(names, offender.DiscordID)
		}
	} else {
		// Dirty token: strip separators and see if a steam id remains.
		digits := nonDigitRegex.ReplaceAllString(identifier, "")
		if len(digits) >= MinSteamIDLength {
			offender.SteamID = digits
			adoptBySteamID(store, names, &offender)
		}
	}

	offender.RepeatOffender = detectRepeat(store, &offender, rule)

	// Last-resort steam id guess from the original token.
	if offender.SteamID == model.UnknownValue {
		digits := nonDigitRegex.ReplaceAllString(identifier, "")
		if len(digits) >= MinSteamIDLength {
			offender.SteamID = digits
		}
	}

	return offender
}

// adoptByDiscordID fills in the steam id and in-game name linked to the
// offender's Discord id, if the store has them.
func adoptByDiscordID(store IdentityStore, offender *model.Offender) {
	steamID, ign, found, err := store.LookupByDiscordID(offender.DiscordID)
	if err != nil {
		log.Printf("Identity lookup by discord id %s failed: %v", offender.DiscordID, err)
		return
	}
	if !found {
		return
	}
	if steamID != "" {
		offender.SteamID = steamID
	}
	if ign != "" {
		offender.IGN = ign
	}
}

// adoptBySteamID fills in the Discord account and in-game name linked to the
// offender's steam id, resolving the display name when a Discord id turns up.
func adoptBySteamID(store IdentityStore, names NameProvider, offender *model.Offender) {
	discordID, ign, found, err := store.LookupBySteamID(offender.SteamID)
	if err != nil {
		log.Printf("Identity lookup by steam id %s failed: %v", offender.SteamID, err)
		return
	}
	if !found {
		return
	}
	if discordID != "" {
		offender.DiscordID = discordID
		offender.DiscordName = lookupName(names, discordID)
	}
	if ign != "" {
		offender.IGN = ign
	}
}

// lookupName resolves a display name, mapping failure to the explicit
// "Unresolved User" sentinel so the embed shows that the lookup was attempted.
func lookupName(names NameProvider, discordID string) string {
	name, err := names.ResolveDisplayName(discordID)
	if err != nil {
		log.Printf("Failed to resolve display name for %s: %v", discordID, err)
		return model.UnresolvedUser
	}
	if name == "" {
		return model.UnknownValue
	}
	return name
}

// detectRepeat decides the repeat-offender flag. With a rule it looks for a
// prior infraction for the same identity and the same rule text; without one
// it falls back to any prior infraction or a positive accumulated-points
// balance. Lookup errors count as "no prior infraction".
func detectRepeat(store IdentityStore, offender *model.Offender, rule string) bool {
	if rule != "" {
		if offender.SteamID != model.UnknownValue {
			count, err := store.CountInfractionsBySteamID(offender.SteamID, rule)
			if err != nil {
				log.Printf("Infraction lookup by steam id %s failed: %v", offender.SteamID, err)
				return false
			}
			return count > 0
		}
		if offender.DiscordID != "" {
			count, err := store.CountInfractionsByDiscordID(offender.DiscordID, rule)
			if err != nil {
				log.Printf("Infraction lookup by discord id %s failed: %v", offender.DiscordID, err)
				return false
			}
			return count > 0
		}
		return false
	}

	if offender.SteamID != model.UnknownValue {
		count, err := store.CountInfractionsBySteamID(offender.SteamID, "")
		if err != nil {
			log.Printf("Infraction count by steam id %s failed: %v", offender.SteamID, err)
		} else if count > 0 {
			return true
		}
		points, err := store.TotalPointsBySteamID(offender.SteamID)
		if err != nil {
			log.Printf("Total points lookup by steam id %s failed: %v", offender.SteamID, err)
			return false
		}
		return points > 0
	}
	if offender.DiscordID != "" {
		count, err := store.CountInfractionsByDiscordID(offender.DiscordID, "")
		if err != nil {
			log.Printf("Infraction count by discord id %s failed: %v", offender.DiscordID, err)
		} else if count > 0 {
			return true
		}
		points, err := store.TotalPointsByDiscordID(offender.DiscordID)
		if err != nil {
			log.Printf("Total points lookup by discord id %s failed: %v", offender.DiscordID, err)
			return false
		}
		return points > 0
	}
	return false
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
