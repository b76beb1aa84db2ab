package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/daynote/internal/blob"
	"github.com/mkessel/daynote/internal/domain"
	"github.com/mkessel/daynote/internal/logging"
	"github.com/mkessel/daynote/internal/search"
)

func TestBlobs_UploadAndFetch(t *testing.T) {
	blobs, err := blob.NewStore(t.TempDir(), logging.New(nil, "silent"))
	require.NoError(t, err)
	srv := testServer(t, WithBlobs(blobs))

	req, err := http.NewRequest("POST", srv.URL+"/api/blobs", bytes.NewReader([]byte("png bytes")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer test-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	ref := body["ref"]
	require.NotEmpty(t, ref)

	// Blob fetches carry no auth so models can pull image URLs.
	got, err := http.Get(srv.URL + "/api/blobs/" + ref)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "image/png", got.Header.Get("Content-Type"))

	data, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestBlobs_FetchMissing(t *testing.T) {
	blobs, err := blob.NewStore(t.TempDir(), logging.New(nil, "silent"))
	require.NoError(t, err)
	srv := testServer(t, WithBlobs(blobs))

	resp, err := http.Get(srv.URL + "/api/blobs/missing.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	idx, err := search.OpenMemOnly(logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	sess := &domain.ChatSession{ID: "s1", OwnerID: "alice", Date: "2026-08-31"}
	idx.IndexMessage(sess, domain.Message{Role: domain.RoleUser, Content: "remember the groceries", Timestamp: time.Now()})

	srv := testServer(t, WithSearcher(idx))

	resp := doJSON(t, "GET", srv.URL+"/api/search?q=groceries", "test-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Hits []search.Hit `json:"hits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, "s1", body.Hits[0].SessionID)
}

func TestSearchEndpoint_MissingQuery(t *testing.T) {
	idx, err := search.OpenMemOnly(logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	srv := testServer(t, WithSearcher(idx))

	resp := doJSON(t, "GET", srv.URL+"/api/search", "test-token", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
