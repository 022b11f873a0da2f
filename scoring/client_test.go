package scoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at srv and disables real sleeping.
func newTestClient(srv *httptest.Server, token string) (*Client, *[]time.Duration) {
	client := New(srv.Client(), srv.URL, token)
	var slept []time.Duration
	client.sleep = func(d time.Duration) { slept = append(slept, d) }
	return client, &slept
}

func TestApplyPointsZeroPointsIsNoOp(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, _ := newTestClient(srv, "secret")

	result := client.ApplyPoints("76561198000000000", 0, "Spam", "", "mod", "")

	assert.True(t, result.Success)
	assert.Nil(t, result.Response)
	assert.False(t, called)
}

func TestApplyPointsUnknownSteamIDIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected call to points API")
	}))
	defer srv.Close()
	client, _ := newTestClient(srv, "secret")

	for _, id := range []string{"", "Unknown"} {
		result := client.ApplyPoints(id, 2, "Spam", "", "mod", "")
		assert.True(t, result.Success)
		assert.Nil(t, result.Response)
	}
}

func TestApplyPointsMissingTokenFailsWithoutCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	for _, token := range []string{"", "CHANGE_ME"} {
		client, _ := newTestClient(srv, token)
		result := client.ApplyPoints("76561198000000000", 2, "Spam", "", "mod", "")
		assert.False(t, result.Success)
	}
	assert.False(t, called)
}

func TestApplyPointsSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		io.WriteString(w, `{"total_points": 7, "action": "1 day mute"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(srv, "secret")

	result := client.ApplyPoints("76561198000000000", 2, "Griefing", "broke spawn", "mod#1", "T-42")

	require.True(t, result.Success)
	require.NotNil(t, result.Response)
	require.NotNil(t, result.Response.TotalPoints)
	assert.EqualValues(t, 7, *result.Response.TotalPoints)
	assert.Equal(t, "1 day mute", result.Response.Action)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "76561198000000000", gotPayload["steamid"])
	assert.EqualValues(t, 2, gotPayload["points"])
	assert.Equal(t, "Griefing", gotPayload["reason"])
	assert.Equal(t, "broke spawn | Ticket T-42", gotPayload["notes"])
	assert.Equal(t, "mod#1", gotPayload["issuer"])
}

func TestApplyPointsNonJSONBodyOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "accepted")
	}))
	defer srv.Close()

	client, _ := newTestClient(srv, "secret")

	result := client.ApplyPoints("76561198000000000", 1, "Spam", "", "mod", "")

	assert.True(t, result.Success)
	assert.Nil(t, result.Response)
}

func TestApplyPointsRetriesTransientStatuses(t *testing.T) {
	for _, status := range []int{429, 502, 503, 504} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(status)
				return
			}
			io.WriteString(w, `{}`)
		}))

		client, slept := newTestClient(srv, "secret")
		result := client.ApplyPoints("76561198000000000", 1, "Spam", "", "mod", "")

		assert.True(t, result.Success, "status %d", status)
		assert.EqualValues(t, 3, calls.Load(), "status %d", status)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept, "status %d", status)
		srv.Close()
	}
}

func TestApplyPointsExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := newTestClient(srv, "secret")
	result := client.ApplyPoints("76561198000000000", 1, "Spam", "", "mod", "")

	assert.False(t, result.Success)
	assert.EqualValues(t, 3, calls.Load())
}

func TestApplyPointsTerminalStatusDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, slept := newTestClient(srv, "secret")
	result := client.ApplyPoints("76561198000000000", 1, "Spam", "", "mod", "")

	assert.False(t, result.Success)
	assert.EqualValues(t, 1, calls.Load())
	assert.Empty(t, *slept)
}

func TestApplyPointsNetworkErrorRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, slept := newTestClient(srv, "secret")
	srv.Close() // all attempts hit a closed listener

	result := client.ApplyPoints("76561198000000000", 1, "Spam", "", "mod", "")

	assert.False(t, result.Success)
	assert.Len(t, *slept, 3)
}
