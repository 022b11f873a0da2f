// Package watchtower implements the ticket resolution flow: a moderator
// pastes a batch of offender lines, and each line is resolved to a canonical
// identity, logged to that offender's watchtower thread, scored through the
// points API and recorded as an infraction. Evidence is archived once per
// ticket and posted under the first offender's entry.
package watchtower

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"watchtower-bot/bot"
	"watchtower-bot/evidence"
	"watchtower-bot/model"
	"watchtower-bot/parser"
	"watchtower-bot/resolver"
	"watchtower-bot/scoring"
	"watchtower-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const usageMessage = "Bulk paste offenders (one per line):\n" +
	"`@DiscordUser [points] [rule] | [mod_notes] | [notes]`\n" +
	"`SteamID64     [points] [rule] | [mod_notes] | [notes]`\n" +
	"- Points optional (default 0)\n" +
	"- Rule optional (recommended for repeat detection)\n" +
	"- Mod notes = internal staff only\n" +
	"- Notes = public in embed\n" +
	"- **SteamID64 works even if not linked to Discord**"

// HandleResolveLog drives the /resolve-log command.
func HandleResolveLog(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg := b.Config

	options := i.ApplicationCommandData().Options
	var ticketChannelID, ticketID string
	for _, opt := range options {
		switch opt.Name {
		case "ticket_channel":
			ticketChannelID = opt.ChannelValue(nil).ID
		case "ticket_id":
			ticketID = opt.StringValue()
		}
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer resolve-log interaction: %v", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, usageMessage)

	paste, err := b.AwaitMessage(i.Member.User.ID, i.ChannelID, cfg.PasteTimeout)
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, "Timed out waiting for offenders paste.")
		return
	}
	lines := splitLines(paste.Content)
	if err := s.ChannelMessageDelete(paste.ChannelID, paste.ID); err != nil {
		log.Printf("Could not delete moderator paste: %v", err)
	}

	contextField := buildRecentContext(s, ticketChannelID)

	// Evidence is gathered once and shared across every line of the paste.
	collector := evidence.NewCollector(b.HTTPClient, b.Uploader)
	collector.MaxAttachmentBytes = cfg.MaxAttachmentBytes
	collector.InlineMaxBytes = cfg.InlineMaxBytes
	entries, err := collector.Collect(&evidence.ChannelHistoryReader{Session: s, ChannelID: ticketChannelID})
	if err != nil {
		log.Printf("Evidence collection for ticket channel %s failed: %v", ticketChannelID, err)
		utils.LogWarn(s, cfg.LogChannelID, "Watchtower", "Evidence", fmt.Sprintf("Collection failed for channel %s: %v", ticketChannelID, err))
	}
	for _, entry := range entries {
		if entry.Lost() {
			log.Printf("Evidence lost for %s (no hosted url or inline fallback)", entry.Filename)
		}
	}

	watchtowerChannel, err := s.Channel(cfg.WatchtowerChannelID)
	if err != nil || (watchtowerChannel.Type != discordgo.ChannelTypeGuildText && watchtowerChannel.Type != discordgo.ChannelTypeGuildForum) {
		utils.SendFollowUp(s, i.Interaction, "Watchtower channel invalid or inaccessible. Please check configuration.")
		return
	}

	names := &sessionNameProvider{session: s}
	processed := 0
	for _, line := range lines {
		parsed, ok := parser.ParseOffenderLine(line)
		if !ok {
			log.Printf("Skipping unparsable line: %s", line)
			continue
		}

		offender := resolver.Resolve(b.Store, names, parsed.Identifier, parsed.Rule)

		threadName := offender.SteamID
		if offender.DiscordName != model.UnknownValue {
			threadName = fmt.Sprintf("%s | %s", offender.DiscordName, offender.SteamID)
		}

		thread := findOrCreateThread(s, watchtowerChannel, threadName)
		if thread == nil {
			utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Failed to create watchtower thread for %s", threadName))
			continue
		}

		embed := buildCaseEmbed(parsed, offender, contextField, ticketID)
		if _, err := s.ChannelMessageSendEmbed(thread.ID, embed); err != nil {
			log.Printf("Failed to send case embed: %v", err)
		}

		if parsed.ModNotes != "" {
			if _, err := s.ChannelMessageSend(thread.ID, "**Staff Notes:** "+parsed.ModNotes); err != nil {
				log.Printf("Failed to send staff notes: %v", err)
			}
		}

		points, _ := strconv.Atoi(parsed.Points)
		result := b.Scoring.ApplyPoints(offender.SteamID, points, parsed.Rule, parsed.Notes, issuerTag(i), ticketID)
		reportPointsResult(s, thread.ID, result)

		recordInfraction(b, parsed, offender)

		// Media is posted once per ticket, under the first offender.
		if processed == 0 {
			postMediaLinks(s, thread.ID, entries, cfg.AttachmentBatchSize)
		}
		processed++
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Logged %d offender(s) to Watchtower.", processed))
}

// splitLines breaks a paste into trimmed non-empty lines.
func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// issuerTag names the moderator for the points API audit trail.
func issuerTag(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	return model.UnknownValue
}

// reportPointsResult posts the scoring outcome to the thread: a warning on
// failure, and the new balance and escalation action when the service
// returned them.
func reportPointsResult(s *discordgo.Session, threadID string, result scoring.Result) {
	if !result.Success {
		if _, err := s.ChannelMessageSend(threadID, "⚠️ Points application failed or was skipped."); err != nil {
			log.Printf("Couldn't notify about points failure: %v", err)
		}
		return
	}
	if result.Response == nil {
		return
	}

	var info []string
	if result.Response.TotalPoints != nil {
		info = append(info, fmt.Sprintf("New total: **%d** points", *result.Response.TotalPoints))
	}
	if result.Response.Action != "" {
		info = append(info, "Escalation: "+result.Response.Action)
	}
	if len(info) > 0 {
		if _, err := s.ChannelMessageSend(threadID, strings.Join(info, "\n")); err != nil {
			log.Printf("Failed to send points API response: %v", err)
		}
	}
}

// recordInfraction appends the infraction for this line. A failed insert is
// logged and never blocks the rest of the paste.
func recordInfraction(b *bot.Bot, parsed *model.OffenseLine, offender model.Offender) {
	reason := parsed.Rule
	if reason == "" {
		reason = parsed.Notes
	}
	if reason == "" {
		reason = "Points:" + parsed.Points
	}

	steamID := offender.SteamID
	if steamID == model.UnknownValue {
		steamID = ""
	}
	if err := b.Store.InsertInfraction(steamID, offender.DiscordID, reason, time.Now().Unix()); err != nil {
		log.Printf("Failed to record infraction: %v", err)
	}
}

// sessionNameProvider resolves display names through the Discord API.
type sessionNameProvider struct {
	session *discordgo.Session
}

func (p *sessionNameProvider) ResolveDisplayName(discordID string) (string, error) {
	user, err := p.session.User(discordID)
	if err != nil {
		return "", err
	}
	if user.GlobalName != "" {
		return user.GlobalName, nil
	}
	return user.Username, nil
}
