package service

import (
	"net/http"
	"strconv"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/leaderboard"
)

type LeaderboardHandler struct {
	Aggregator *leaderboard.Aggregator
	CacheMs    int64
}

// ServeHTTP handles GET /api/v1/getleaderboard?gameId=…
func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := int64(pkgs.DefaultGameID)
	if v := r.URL.Query().Get("gameId"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid gameId", http.StatusBadRequest)
			return
		}
		gameID = parsed
	}

	payload, cached, err := h.Aggregator.GetWithCacheInfo(r.Context(), gameID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":   false,
			"code": pkgs.CodeAggregateFailed,
		})
		return
	}

	body := map[string]any{
		"ok":                    true,
		"gameId":                payload.GameID,
		"gameName":              payload.GameName,
		"lastUpdated":           payload.LastUpdated,
		"scorePagination":       payload.ScorePagination,
		"transactionPagination": payload.TransactionPagination,
		"scoreData":             payload.ScoreData,
		"transactionData":       payload.TransactionData,
		"source":                payload.Source,
	}
	if cached {
		body["cached"] = true
		body["cacheMs"] = h.CacheMs
	}

	writeJSON(w, http.StatusOK, body)
}
