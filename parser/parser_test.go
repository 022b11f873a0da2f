package parser

import (
	"testing"
	"watchtower-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffenderLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.OffenseLine
	}{
		{
			name: "mention with points rule and both notes",
			line: "<@123456789012345678> 2 Griefing | Internal | Public note",
			want: model.OffenseLine{
				Identifier: "<@123456789012345678>",
				Points:     "2",
				Rule:       "Griefing",
				ModNotes:   "Internal",
				Notes:      "Public note",
			},
		},
		{
			name: "steamid with empty mod notes",
			line: "76561198000000000 1 Spam || Public",
			want: model.OffenseLine{
				Identifier: "76561198000000000",
				Points:     "1",
				Rule:       "Spam",
				ModNotes:   "",
				Notes:      "Public",
			},
		},
		{
			name: "nickname mention form",
			line: "<@!42> 3 Cheating",
			want: model.OffenseLine{
				Identifier: "<@!42>",
				Points:     "3",
				Rule:       "Cheating",
			},
		},
		{
			name: "identifier only defaults points to zero",
			line: "76561198000000000",
			want: model.OffenseLine{
				Identifier: "76561198000000000",
				Points:     "0",
			},
		},
		{
			name: "multi word rule is captured whole",
			line: "<@99> 1 Mic spam in voice",
			want: model.OffenseLine{
				Identifier: "<@99>",
				Points:     "1",
				Rule:       "Mic spam in voice",
			},
		},
		{
			name: "rule without points",
			line: "<@99> | staff only",
			want: model.OffenseLine{
				Identifier: "<@99>",
				Points:     "0",
				ModNotes:   "staff only",
			},
		},
		{
			name: "leading whitespace tolerated",
			line: "   76561198000000000 2 Griefing",
			want: model.OffenseLine{
				Identifier: "76561198000000000",
				Points:     "2",
				Rule:       "Griefing",
			},
		},
		{
			name: "segments are trimmed",
			line: "<@1> 1 Spam |  padded notes  |  public  ",
			want: model.OffenseLine{
				Identifier: "<@1>",
				Points:     "1",
				Rule:       "Spam",
				ModNotes:   "padded notes",
				Notes:      "public",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOffenderLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseOffenderLineRejects(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"not-an-identifier 2 Spam",
		"SteamName 1 Griefing | notes",
		"| only notes",
		"<@> 1 Spam",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			got, ok := ParseOffenderLine(line)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}
