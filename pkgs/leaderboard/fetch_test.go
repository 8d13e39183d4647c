package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
)

func servePages(t *testing.T, pages map[int]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		payload, ok := pages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(frameHTML(t, payload)))
	}))
}

func multiPagePayload(gameID int64, totalPages int, scores []map[string]any) map[string]any {
	return map[string]any{
		"gameId":                gameID,
		"gameName":              "Test Game",
		"lastUpdated":           "2026-08-01T00:00:00Z",
		"scorePagination":       map[string]any{"page": 1, "totalPages": totalPages},
		"transactionPagination": map[string]any{"page": 1, "totalPages": 1},
		"scoreData":             scores,
		"transactionData":       []map[string]any{},
	}
}

func TestFetchAllMergesAndSortsAcrossPages(t *testing.T) {
	srv := servePages(t, map[int]map[string]any{
		1: multiPagePayload(64, 2, []map[string]any{
			{"userId": "u2", "walletAddress": "0xbb", "score": 500, "rank": 2},
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		}),
		2: multiPagePayload(64, 2, []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
			{"userId": "u3", "walletAddress": "0xcc", "score": 300, "rank": 3},
		}),
	})
	defer srv.Close()

	f := NewFetcher(srv.URL, clients.Alerter{})
	payload, err := f.FetchAll(context.Background(), 64)
	assert.NoError(t, err)

	assert.Len(t, payload.ScoreData, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{payload.ScoreData[0].Rank, payload.ScoreData[1].Rank, payload.ScoreData[2].Rank})
	assert.Equal(t, 2, payload.Source.Pages)
	assert.Equal(t, srv.URL, payload.Source.Base)
}

func TestFetchAllStopsEarlyOnEmptyPage(t *testing.T) {
	srv := servePages(t, map[int]map[string]any{
		1: multiPagePayload(64, 3, []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		}),
		2: multiPagePayload(64, 3, []map[string]any{}),
		3: multiPagePayload(64, 3, []map[string]any{
			{"userId": "u9", "walletAddress": "0xff", "score": 1, "rank": 9},
		}),
	})
	defer srv.Close()

	f := NewFetcher(srv.URL, clients.Alerter{})
	payload, err := f.FetchAll(context.Background(), 64)
	assert.NoError(t, err)

	// page 2 was empty, so page 3 was never visited
	assert.Len(t, payload.ScoreData, 1)
	assert.Equal(t, 1, payload.Source.Pages)
}

func TestFetchAllKeepsPartialResultOnMidWalkError(t *testing.T) {
	srv := servePages(t, map[int]map[string]any{
		1: multiPagePayload(64, 3, []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		}),
		// page 2 404s
	})
	defer srv.Close()

	f := NewFetcher(srv.URL, clients.Alerter{})
	payload, err := f.FetchAll(context.Background(), 64)
	assert.NoError(t, err)
	assert.Len(t, payload.ScoreData, 1)
}

func TestFetchAllFailsWhenPageOneFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, clients.Alerter{})
	_, err := f.FetchAll(context.Background(), 64)
	assert.Error(t, err)
}

func TestAggregatorServesFromCacheWithinTTL(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(frameHTML(t, multiPagePayload(64, 1, []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		}))))
	}))
	defer srv.Close()

	a := NewAggregator(srv.URL, 15*time.Second, clients.Alerter{})

	first, cached, err := a.GetWithCacheInfo(context.Background(), 64)
	assert.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := a.GetWithCacheInfo(context.Background(), 64)
	assert.NoError(t, err)
	assert.True(t, cached)
	assert.EqualValues(t, 1, hits.Load())

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestAggregatorRefetchesAfterTTL(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(frameHTML(t, multiPagePayload(64, 1, []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		}))))
	}))
	defer srv.Close()

	a := NewAggregator(srv.URL, time.Millisecond, clients.Alerter{})

	_, _, err := a.GetWithCacheInfo(context.Background(), 64)
	assert.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, cached, err := a.GetWithCacheInfo(context.Background(), 64)
	assert.NoError(t, err)
	assert.False(t, cached)
	assert.EqualValues(t, 2, hits.Load())
}
