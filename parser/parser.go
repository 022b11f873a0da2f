// Package parser turns raw lines from a moderator's bulk paste into structured
// offense records.
package parser

import (
	"regexp"
	"strings"
	"watchtower-bot/model"
)

// lineRegex matches the segment left of the first pipe: an identifier (user
// mention or a bare run of up to 30 digits), optional points, optional rule.
var lineRegex = regexp.MustCompile(`^\s*(<@!?\d+>|\d{1,30})\s*(\d+)?\s*(.*)?$`)

// ParseOffenderLine parses a single line of the form
//
//	identifier [points] [rule] | [mod_notes] | [notes]
//
// and returns the parsed record. ok is false when the line is empty or its
// identifier cannot be matched; callers skip such lines and keep going.
func ParseOffenderLine(line string) (*model.OffenseLine, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	// Split on pipes for mod notes and public notes before grammar matching.
	parts := strings.SplitN(line, "|", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	left := parts[0]
	var modNotes, notes string
	if len(parts) > 1 {
		modNotes = parts[1]
	}
	if len(parts) > 2 {
		notes = parts[2]
	}

	m := lineRegex.FindStringSubmatch(left)
	if m == nil {
		return nil, false
	}

	points := m[2]
	if points == "" {
		points = "0"
	}

	return &model.OffenseLine{
		Identifier: m[1],
		Points:     points,
		Rule:       strings.TrimSpace(m[3]),
		ModNotes:   modNotes,
		Notes:      notes,
	}, true
}
