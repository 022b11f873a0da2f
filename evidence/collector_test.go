package evidence

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader returns a fixed history.
type fakeReader struct {
	messages []Message
	err      error
}

func (f *fakeReader) Messages() ([]Message, error) {
	return f.messages, f.err
}

// fakeUploader succeeds for every filename except those in failFor.
type fakeUploader struct {
	failFor  map[string]bool
	uploaded []string
}

func (f *fakeUploader) Upload(filename string, data []byte, contentType string) string {
	f.uploaded = append(f.uploaded, filename)
	if f.failFor[filename] {
		return ""
	}
	return "https://files.example.com/" + filename
}

// fileServer serves attachment bytes by path and lets tests fail a given path.
func fileServer(t *testing.T, failPaths map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failPaths[r.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, "data-of-"+r.URL.Path)
	}))
}

func historyWith(serverURL string, filenames ...string) []Message {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]Message, 0, len(filenames))
	for i, name := range filenames {
		messages = append(messages, Message{
			AuthorName: fmt.Sprintf("author-%d", i),
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Content:    fmt.Sprintf("message %d", i),
			Attachments: []Attachment{{
				Filename:    name,
				URL:         serverURL + "/" + name,
				ContentType: "image/png",
				Size:        1024,
			}},
		})
	}
	return messages
}

func TestCollectPreservesChronologicalOrder(t *testing.T) {
	srv := fileServer(t, nil)
	defer srv.Close()

	uploader := &fakeUploader{}
	collector := NewCollector(srv.Client(), uploader)

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "a.png", "b.png", "c.png")})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a.png", entries[0].Filename)
	assert.Equal(t, "b.png", entries[1].Filename)
	assert.Equal(t, "c.png", entries[2].Filename)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, uploader.uploaded)
	assert.Equal(t, "author-0", entries[0].AuthorName)
	assert.Equal(t, "2025-06-01 12:00:00", entries[0].Timestamp)
	assert.Equal(t, "message 0", entries[0].MessageText)
}

func TestCollectHostedEntries(t *testing.T) {
	srv := fileServer(t, nil)
	defer srv.Close()

	collector := NewCollector(srv.Client(), &fakeUploader{})

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "proof.png")})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "https://files.example.com/proof.png", entries[0].HostedURL)
	assert.Empty(t, entries[0].FallbackData)
	assert.False(t, entries[0].Lost())
}

func TestCollectUploadFailureFallsBackInline(t *testing.T) {
	srv := fileServer(t, nil)
	defer srv.Close()

	uploader := &fakeUploader{failFor: map[string]bool{"clip.mp4": true}}
	collector := NewCollector(srv.Client(), uploader)

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "clip.mp4")})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Empty(t, entries[0].HostedURL)
	assert.Equal(t, []byte("data-of-/clip.mp4"), entries[0].FallbackData)
	assert.False(t, entries[0].Lost())
}

func TestCollectUploadFailureTooLargeForInline(t *testing.T) {
	srv := fileServer(t, nil)
	defer srv.Close()

	uploader := &fakeUploader{failFor: map[string]bool{"huge.mp4": true}}
	collector := NewCollector(srv.Client(), uploader)
	collector.InlineMaxBytes = 512 // below the declared attachment size

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "huge.mp4")})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, entries[0].Lost())
}

func TestCollectSkipsOversizedWithoutDownloading(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	messages := historyWith(srv.URL, "colossal.bin")
	messages[0].Attachments[0].Size = 300 * 1024 * 1024

	uploader := &fakeUploader{}
	collector := NewCollector(srv.Client(), uploader)

	entries, err := collector.Collect(&fakeReader{messages: messages})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, entries[0].Lost())
	assert.False(t, requested)
	assert.Empty(t, uploader.uploaded)
}

func TestCollectDownloadFailureDoesNotAbortBatch(t *testing.T) {
	srv := fileServer(t, map[string]bool{"/broken.png": true})
	defer srv.Close()

	collector := NewCollector(srv.Client(), &fakeUploader{})

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "ok1.png", "broken.png", "ok2.png")})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.False(t, entries[0].Lost())
	assert.True(t, entries[1].Lost())
	assert.False(t, entries[2].Lost())
}

func TestCollectEntryInvariant(t *testing.T) {
	srv := fileServer(t, map[string]bool{"/broken.png": true})
	defer srv.Close()

	uploader := &fakeUploader{failFor: map[string]bool{"fallback.png": true}}
	collector := NewCollector(srv.Client(), uploader)

	entries, err := collector.Collect(&fakeReader{messages: historyWith(srv.URL, "hosted.png", "fallback.png", "broken.png")})
	require.NoError(t, err)

	for _, entry := range entries {
		isBoth := entry.HostedURL != "" && len(entry.FallbackData) > 0
		assert.False(t, isBoth, "entry %s carries both a hosted url and inline bytes", entry.Filename)
	}
}

func TestCollectHistoryError(t *testing.T) {
	collector := NewCollector(http.DefaultClient, &fakeUploader{})

	entries, err := collector.Collect(&fakeReader{err: errors.New("channel gone")})
	assert.Error(t, err)
	assert.Nil(t, entries)
}
