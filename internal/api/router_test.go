package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/node"
	"github.com/thanhnp/bicle/internal/scheduler"
	"github.com/thanhnp/bicle/internal/storage"
)

type staticSource []models.NewsItem

func (s staticSource) Fetch(context.Context, int) ([]models.NewsItem, error) {
	return s, nil
}

func newTestRouter(t *testing.T, items ...models.NewsItem) *Router {
	t.Helper()
	gw, err := storage.NewFileGateway(t.TempDir())
	require.NoError(t, err)

	n := node.New(gw, node.Options{
		Version: "test",
		Now:     func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(func() { n.Close() })

	job := scheduler.NewJob(n, staticSource(items), nil, 3, 5, nil)
	return NewRouter(n, job, 3, nil)
}

func do(t *testing.T, r *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "bicle_chain_blocks")
}

func TestGenesisBlock(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/blocks/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	var b models.Block
	decode(t, w, &b)
	require.Equal(t, ledger.GenesisHash, b.BlockHash)

	w = do(t, r, http.MethodGet, "/api/v1/blocks/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	var latest map[string]interface{}
	decode(t, w, &latest)
	require.Equal(t, ledger.GenesisHash, latest["blockhash"])
	require.EqualValues(t, 0, latest["block_number"])

	require.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/blocks/42", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/blocks/abc", "").Code)
}

func TestSubmitAndMine(t *testing.T) {
	feedItem := models.NewsItem{Title: "From feed", Link: "https://feed.test/1", Source: "Feed"}
	r := newTestRouter(t, feedItem)

	w := do(t, r, http.MethodPost, "/api/v1/submissions", `{"link":"https://user.test/a","title":"X"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var entry models.PendingEntry
	decode(t, w, &entry)
	require.Equal(t, node.DefaultSubmitter, entry.Submitter)

	w = do(t, r, http.MethodPost, "/api/v1/submissions", `{"link":"https://user.test/a"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already_pending")

	w = do(t, r, http.MethodGet, "/api/v1/submissions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.PendingEntry
	decode(t, w, &pending)
	require.Len(t, pending, 1)

	w = do(t, r, http.MethodPost, "/api/v1/mine", "")
	require.Equal(t, http.StatusOK, w.Code)
	var mined struct {
		Mined bool          `json:"mined"`
		Block *models.Block `json:"block"`
	}
	decode(t, w, &mined)
	require.True(t, mined.Mined)
	require.Equal(t, int64(1), mined.Block.BlockNumber)
	require.Len(t, mined.Block.News, 2)
	require.Equal(t, "https://user.test/a", mined.Block.News[0].Link)

	w = do(t, r, http.MethodPost, "/api/v1/submissions", `{"link":"https://user.test/a"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already_broadcast")

	w = do(t, r, http.MethodPost, "/api/v1/mine", `{"max_news":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"mined":false}`, w.Body.String())
}

func TestSubmitValidation(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/submissions", `{"title":"no link"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/submissions", `{"link":"not a url"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/mine", `{"max_news":0`).Code)
}

func TestChainEndpoints(t *testing.T) {
	r := newTestRouter(t, models.NewsItem{Title: "a", Link: "https://feed.test/a", Source: "Feed"})
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/v1/mine", "").Code)

	w := do(t, r, http.MethodGet, "/api/v1/chain/verify", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"valid":true}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/chain/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="bicle_blockchain_`))
	var blocks []models.Block
	decode(t, w, &blocks)
	require.Len(t, blocks, 2)

	w = do(t, r, http.MethodGet, "/api/v1/blocks/recent?count=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &blocks)
	require.Len(t, blocks, 1)
	require.Equal(t, int64(1), blocks[0].BlockNumber)
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/blocks/recent?count=-1", "").Code)

	w = do(t, r, http.MethodGet, "/api/v1/stats?top=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Sources      []models.SourceCount `json:"sources"`
		TotalEntries int                  `json:"total_entries"`
		BlockCount   int                  `json:"block_count"`
	}
	decode(t, w, &summary)
	require.Len(t, summary.Sources, 1)
	require.Equal(t, 2, summary.TotalEntries)
	require.Equal(t, 2, summary.BlockCount)

	w = do(t, r, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st models.NodeStatus
	decode(t, w, &st)
	require.Equal(t, "test", st.Version)
	require.Equal(t, 2, st.BlockCount)
	require.Equal(t, 1, st.HistoryCount)
	require.True(t, st.Integrity)
	require.True(t, st.PersistenceHealthy)
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodOptions, "/api/v1/status", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
