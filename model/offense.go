package model

// OffenseLine is one parsed entry from a moderator's bulk paste. It is never
// mutated after parsing.
type OffenseLine struct {
	Identifier string // raw token as matched: "<@123...>" or a bare digit run
	Points     string // digit string, "0" when omitted
	Rule       string
	ModNotes   string // internal staff notes
	Notes      string // public notes shown in the embed
}

// Offender is the canonical identity resolved for a single offense line.
type Offender struct {
	SteamID        string // "Unknown" when no steam id could be established
	DiscordID      string // empty when unknown
	DiscordName    string // "Unknown" by default, "Unresolved User" when lookup failed
	IGN            string // in-game name, "Unknown" by default
	RepeatOffender bool
}

// Sentinel values used by the resolver and rendered in embeds.
const (
	UnknownValue   = "Unknown"
	UnresolvedUser = "Unresolved User"
)
