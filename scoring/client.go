// Package scoring posts point penalties to the remote points service.
package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"watchtower-bot/model"
)

const maxAttempts = 3

// placeholderToken is the unconfigured default shipped in .env templates.
const placeholderToken = "CHANGE_ME"

// Client talks to the points API with bounded retry on transient failures.
type Client struct {
	HTTPClient *http.Client
	APIURL     string
	Token      string

	sleep func(time.Duration)
}

// New creates a scoring client.
func New(httpClient *http.Client, apiURL, token string) *Client {
	return &Client{
		HTTPClient: httpClient,
		APIURL:     apiURL,
		Token:      token,
		sleep:      time.Sleep,
	}
}

// Result is the outcome of one ApplyPoints call. Response is nil when the
// service returned nothing usable, including the no-op success case.
type Result struct {
	Success  bool
	Response *PointsResponse
}

// PointsResponse is the structured part of a 200 reply the bot knows how to
// render.
type PointsResponse struct {
	TotalPoints *int64 `json:"total_points"`
	Action      string `json:"action"`
}

type pointsRequest struct {
	SteamID string `json:"steamid"`
	Points  int    `json:"points"`
	Reason  string `json:"reason"`
	Notes   string `json:"notes"`
	Issuer  string `json:"issuer"`
}

// ApplyPoints applies a point penalty to a steam account. Zero points or an
// unknown steam id is a successful no-op; a missing credential fails without
// calling out. Transient statuses (429, 502, 503, 504) and network errors are
// retried up to two more times with exponential backoff; any other non-200
// status is terminal.
func (c *Client) ApplyPoints(steamID string, points int, rule, notes, issuer, ticketID string) Result {
	if points <= 0 || steamID == "" || steamID == model.UnknownValue {
		return Result{Success: true}
	}
	if c.Token == "" || c.Token == placeholderToken {
		log.Println("Points API token missing; skipping points application.")
		return Result{Success: false}
	}

	if ticketID != "" {
		notes = fmt.Sprintf("%s | Ticket %s", notes, ticketID)
	}
	payload, err := json.Marshal(pointsRequest{
		SteamID: steamID,
		Points:  points,
		Reason:  rule,
		Notes:   notes,
		Issuer:  issuer,
	})
	if err != nil {
		log.Printf("Failed to encode points payload: %v", err)
		return Result{Success: false}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, retry := c.post(payload)
		if !retry {
			return result
		}
		c.sleep(time.Duration(1<<attempt) * time.Second)
	}
	return Result{Success: false}
}

// post performs a single attempt. retry is true only for transient failures.
func (c *Client) post(payload []byte) (Result, bool) {
	req, err := http.NewRequest(http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Failed to create points API request: %v", err)
		return Result{Success: false}, false
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("Points API call failed, retrying: %v", err)
		return Result{Success: false}, true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Failed to read points API response, retrying: %v", err)
		return Result{Success: false}, true
	}

	if resp.StatusCode == http.StatusOK {
		var data PointsResponse
		if err := json.Unmarshal(body, &data); err != nil {
			// The service accepted the action; there is just nothing
			// structured to render.
			log.Printf("Points API returned non-JSON on 200 (%s)", string(body))
			return Result{Success: true}, false
		}
		return Result{Success: true, Response: &data}, false
	}

	log.Printf("Points API error %d: %s", resp.StatusCode, string(body))
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return Result{Success: false}, true
	}
	return Result{Success: false}, false
}
