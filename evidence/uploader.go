// Package evidence archives ticket attachments to an external file host,
// falling back to direct Discord attachments when the host rejects a file.
package evidence

import (
	"bytes"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
)

// CatboxAPIURL is the anonymous file host endpoint.
const CatboxAPIURL = "https://catbox.moe/user/api.php"

// Uploader uploads a byte blob to a remote file host. An empty return value
// means the upload failed and the caller should consider an inline fallback.
type Uploader interface {
	Upload(filename string, data []byte, contentType string) string
}

// CatboxUploader uploads files to catbox.moe one at a time. The host is
// best-effort and failures are expected, so there is a single attempt per
// file and no retry.
type CatboxUploader struct {
	Client   *http.Client
	APIURL   string
	Userhash string
}

// NewCatboxUploader creates an uploader backed by the given HTTP client. The
// userhash is optional; anonymous uploads work without one.
func NewCatboxUploader(client *http.Client, userhash string) *CatboxUploader {
	return &CatboxUploader{
		Client:   client,
		APIURL:   CatboxAPIURL,
		Userhash: userhash,
	}
}

// Upload posts one file to the host and returns the hosted URL, or an empty
// string on any failure.
func (u *CatboxUploader) Upload(filename string, data []byte, contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("reqtype", "fileupload"); err != nil {
		log.Printf("Failed to build catbox upload form: %v", err)
		return ""
	}
	if u.Userhash != "" {
		if err := writer.WriteField("userhash", u.Userhash); err != nil {
			log.Printf("Failed to build catbox upload form: %v", err)
			return ""
		}
	}
	part, err := writer.CreateFormFile("fileToUpload", filename)
	if err != nil {
		log.Printf("Failed to build catbox upload form: %v", err)
		return ""
	}
	if _, err := part.Write(data); err != nil {
		log.Printf("Failed to build catbox upload form: %v", err)
		return ""
	}
	if err := writer.Close(); err != nil {
		log.Printf("Failed to build catbox upload form: %v", err)
		return ""
	}

	req, err := http.NewRequest(http.MethodPost, u.APIURL, &body)
	if err != nil {
		log.Printf("Failed to create catbox request: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		log.Printf("Catbox upload of %s failed: %v", filename, err)
		return ""
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Failed to read catbox response for %s: %v", filename, err)
		return ""
	}

	result := strings.TrimSpace(string(text))
	if resp.StatusCode == http.StatusOK && strings.HasPrefix(result, "http") {
		return result
	}
	log.Printf("Catbox upload of %s failed %d: %s", filename, resp.StatusCode, result)
	return ""
}
