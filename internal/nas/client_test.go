package nas

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string, secret string, retryMax time.Duration) *Client {
	return NewClient(Options{
		URL:      url,
		Secret:   secret,
		RetryMax: retryMax,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestDisconnectPostsRequest(t *testing.T) {
	var got DisconnectRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(srv.URL, "hook-secret", time.Second)
	err := client.Disconnect(context.Background(), DisconnectRequest{
		Username: "jdoe",
		MAC:      "aa:bb:cc:dd:ee:ff",
		Reason:   "quota exceeded",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer hook-secret", auth)
	assert.Equal(t, "jdoe", got.Username)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", got.MAC)
	assert.Equal(t, "quota exceeded", got.Reason)
}

func TestDisconnectRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(srv.URL, "", 5*time.Second)
	err := client.Disconnect(context.Background(), DisconnectRequest{Username: "jdoe", Reason: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDisconnectClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := testClient(srv.URL, "wrong", 5*time.Second)
	err := client.Disconnect(context.Background(), DisconnectRequest{Username: "jdoe", Reason: "admin"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDisconnectWithoutURLIsNoop(t *testing.T) {
	client := testClient("", "", time.Second)
	assert.NoError(t, client.Disconnect(context.Background(), DisconnectRequest{Username: "jdoe"}))
}
