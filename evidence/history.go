package evidence

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Message is one ticket message in chronological order, reduced to what the
// collector needs.
type Message struct {
	AuthorName  string
	Timestamp   time.Time
	Content     string
	Attachments []Attachment
}

// Attachment describes one file attached to a ticket message.
type Attachment struct {
	Filename    string
	URL         string
	ContentType string
	Size        int64
}

// HistoryReader yields a ticket channel's messages oldest-first, so evidence
// order matches the ticket narrative.
type HistoryReader interface {
	Messages() ([]Message, error)
}

// ChannelHistoryReader reads the full history of a Discord channel.
type ChannelHistoryReader struct {
	Session   *discordgo.Session
	ChannelID string
}

// Messages pages through the channel newest-first (the only direction the API
// offers) and returns the result reversed into chronological order.
func (r *ChannelHistoryReader) Messages() ([]Message, error) {
	var raw []*discordgo.Message
	beforeID := ""
	for {
		page, err := r.Session.ChannelMessages(r.ChannelID, 100, beforeID, "", "")
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		raw = append(raw, page...)
		beforeID = page[len(page)-1].ID
	}

	messages := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		msg := raw[i]
		authorName := "Unknown"
		if msg.Author != nil {
			if msg.Author.GlobalName != "" {
				authorName = msg.Author.GlobalName
			} else if msg.Author.Username != "" {
				authorName = msg.Author.Username
			}
		}

		m := Message{
			AuthorName: authorName,
			Timestamp:  msg.Timestamp,
			Content:    msg.Content,
		}
		for _, att := range msg.Attachments {
			m.Attachments = append(m.Attachments, Attachment{
				Filename:    att.Filename,
				URL:         att.URL,
				ContentType: att.ContentType,
				Size:        int64(att.Size),
			})
		}
		messages = append(messages, m)
	}
	return messages, nil
}
