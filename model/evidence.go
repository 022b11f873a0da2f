package model

// EvidenceEntry describes one attachment found in a ticket's message history,
// in the order it appeared. After processing, at most one of HostedURL and
// FallbackData is set; both empty means the attachment was lost (oversized,
// download failure, or upload failure with no room for an inline fallback).
type EvidenceEntry struct {
	Filename    string
	AuthorName  string
	Timestamp   string // "2006-01-02 15:04:05"
	MessageText string

	HostedURL    string
	FallbackData []byte
	ContentType  string
}

// Lost reports whether the attachment could not be preserved in any form.
func (e *EvidenceEntry) Lost() bool {
	return e.HostedURL == "" && len(e.FallbackData) == 0
}
