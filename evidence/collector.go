package evidence

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"watchtower-bot/model"
)

// Default size ceilings, overridable through the config.
const (
	DefaultMaxAttachmentBytes = 250 * 1024 * 1024
	DefaultInlineMaxBytes     = 25 * 1024 * 1024
)

// Collector walks a ticket's message history, downloads each attachment and
// hands it to the uploader. It runs once per ticket; the collected entries are
// shared across every offense line in the same paste.
type Collector struct {
	Client   *http.Client
	Uploader Uploader

	MaxAttachmentBytes int64
	InlineMaxBytes     int64
}

// NewCollector creates a collector with the default size ceilings.
func NewCollector(client *http.Client, uploader Uploader) *Collector {
	return &Collector{
		Client:             client,
		Uploader:           uploader,
		MaxAttachmentBytes: DefaultMaxAttachmentBytes,
		InlineMaxBytes:     DefaultInlineMaxBytes,
	}
}

// Collect processes every attachment in the history, oldest first, and returns
// one entry per attachment in source order. A failed download or upload never
// aborts the walk: the entry is recorded (hosted, inline fallback, or lost)
// and the next attachment is processed.
func (c *Collector) Collect(reader HistoryReader) ([]model.EvidenceEntry, error) {
	messages, err := reader.Messages()
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket history: %w", err)
	}

	var entries []model.EvidenceEntry
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			entry := model.EvidenceEntry{
				Filename:    att.Filename,
				AuthorName:  msg.AuthorName,
				Timestamp:   msg.Timestamp.Format("2006-01-02 15:04:05"),
				MessageText: msg.Content,
				ContentType: att.ContentType,
			}
			if entry.Filename == "" {
				entry.Filename = fmt.Sprintf("attachment_%d", time.Now().Unix())
			}

			if att.Size >= c.MaxAttachmentBytes {
				log.Printf("Skipping very large attachment %s (%d bytes)", att.Filename, att.Size)
				entries = append(entries, entry)
				continue
			}

			data, err := c.download(att.URL)
			if err != nil {
				log.Printf("Failed to download attachment %s: %v", att.URL, err)
				entries = append(entries, entry)
				continue
			}

			entry.HostedURL = c.Uploader.Upload(entry.Filename, data, att.ContentType)
			if entry.HostedURL == "" {
				if att.Size < c.InlineMaxBytes {
					entry.FallbackData = data
				} else {
					log.Printf("Attachment lost (no hosted url and too large for Discord): %s", att.Filename)
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// download fetches the raw bytes of one attachment.
func (c *Collector) download(url string) ([]byte, error) {
	resp, err := c.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
