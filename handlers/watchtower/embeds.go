package watchtower

import (
	"bytes"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"watchtower-bot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// Discord embed size limits.
const (
	embedDescriptionLimit = 4096
	embedFieldValueLimit  = 1024
	contextSnippetLimit   = 700
	mediaChunkSize        = 5
)

// buildCaseEmbed renders one offender's case: rule and public notes in the
// description, identity and points in the fields, plus the shared recent
// context and the repeat-offender marker when set.
func buildCaseEmbed(parsed *model.OffenseLine, offender model.Offender, contextField, ticketID string) *discordgo.MessageEmbed {
	var descriptionParts []string
	if parsed.Rule != "" {
		descriptionParts = append(descriptionParts, "Rule: "+parsed.Rule)
	}
	if parsed.Notes != "" {
		descriptionParts = append(descriptionParts, "Ticket Text: "+parsed.Notes)
	}
	description := strings.TrimSpace(strings.Join(descriptionParts, "\n"))
	if description == "" {
		description = "—"
	}
	if len(description) > embedDescriptionLimit {
		description = description[:embedDescriptionLimit-16] + "\n...(truncated)"
	}

	title := "Ticket Resolution"
	if ticketID != "" {
		title = fmt.Sprintf("Ticket Resolution #%s", ticketID)
	}

	color := 0xFFA500 // orange
	if points, _ := strconv.Atoi(parsed.Points); points > 0 {
		color = 0xFF0000 // red
	}

	if contextField == "" {
		contextField = "—"
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Discord", Value: offender.DiscordName, Inline: true},
			{Name: "SteamID", Value: offender.SteamID, Inline: true},
			{Name: "IGN", Value: offender.IGN, Inline: true},
			{Name: "Points Applied", Value: parsed.Points, Inline: true},
			{Name: "Recent Context (latest messages)", Value: contextField, Inline: false},
		},
	}
	if offender.RepeatOffender {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Repeat Offender (same rule)",
			Value: "Yes — previous infraction for this rule detected",
		})
	}
	return embed
}

// buildRecentContext renders the latest ticket messages oldest-first into a
// single embed field, truncated to the field value limit.
func buildRecentContext(s *discordgo.Session, channelID string) string {
	recent, err := s.ChannelMessages(channelID, 20, "", "", "")
	if err != nil {
		log.Printf("Failed to fetch recent context from %s: %v", channelID, err)
		return "Context unavailable."
	}

	var contextLines []string
	for i := len(recent) - 1; i >= 0; i-- { // oldest -> newest
		msg := recent[i]
		author := model.UnknownValue
		if msg.Author != nil {
			if msg.Author.GlobalName != "" {
				author = msg.Author.GlobalName
			} else if msg.Author.Username != "" {
				author = msg.Author.Username
			}
		}
		snippet := strings.TrimSpace(msg.Content)
		if len(snippet) > contextSnippetLimit {
			snippet = snippet[:contextSnippetLimit-3] + "..."
		}
		contextLines = append(contextLines, author+": "+snippet)
	}

	full := strings.Join(contextLines, "\n")
	if len(full) <= embedFieldValueLimit {
		return full
	}
	truncated := full[:embedFieldValueLimit]
	if idx := strings.LastIndex(truncated, "\n"); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "\n...(truncated)"
}

// postMediaLinks mirrors the ticket's media into the thread in chronological
// order: author, timestamp, optional message text, then filename and hosted
// url (or a failure note). Files that fell back to inline transfer are sent
// as direct attachments afterwards.
func postMediaLinks(s *discordgo.Session, threadID string, entries []model.EvidenceEntry, batchSize int) {
	if batchSize <= 0 {
		batchSize = 10
	}

	var lines []string
	for _, entry := range entries {
		var sb strings.Builder
		sb.WriteString(entry.AuthorName + " — " + entry.Timestamp + "\n")
		if entry.MessageText != "" {
			sb.WriteString(entry.MessageText + "\n")
		}
		if entry.HostedURL != "" {
			sb.WriteString(entry.Filename + ": " + entry.HostedURL)
		} else {
			sb.WriteString(entry.Filename + ": (upload failed)")
		}
		lines = append(lines, sb.String())
	}
	if len(lines) == 0 {
		return
	}

	for _, chunk := range lo.Chunk(lines, mediaChunkSize) {
		if _, err := s.ChannelMessageSend(threadID, "**Media:**\n"+strings.Join(chunk, "\n\n")); err != nil {
			log.Printf("Failed to post media links chunk: %v", err)
		}
	}

	fallbacks := lo.Filter(entries, func(entry model.EvidenceEntry, _ int) bool {
		return len(entry.FallbackData) > 0
	})
	for _, batch := range lo.Chunk(fallbacks, batchSize) {
		files := make([]*discordgo.File, 0, len(batch))
		for _, entry := range batch {
			files = append(files, &discordgo.File{
				Name:        entry.Filename,
				ContentType: entry.ContentType,
				Reader:      bytes.NewReader(entry.FallbackData),
			})
		}
		_, err := s.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
			Content: "**Media (fallback attachments)**",
			Files:   files,
		})
		if err != nil {
			log.Printf("Failed to send fallback attachments: %v", err)
		}
	}
}
