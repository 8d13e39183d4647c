package service

import (
	"net/http"
	"strings"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
)

type JobsHandler struct {
	Registry *jobs.Registry
}

// ServeHTTP handles GET /api/v1/jobs/:id, projecting a job record to
// its status-specific shape.
func (h *JobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if id == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}

	rec, ok := h.Registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"ok":   false,
			"code": pkgs.CodeJobNotFound,
		})
		return
	}

	body := map[string]any{
		"ok":            true,
		"status":        rec.Status,
		"jobId":         rec.ID,
		"walletAddress": rec.WalletAddress,
		"score":         rec.Score,
	}
	if rec.Nonce != nil {
		body["nonce"] = *rec.Nonce
	}
	if rec.SentAt != nil {
		body["sentAt"] = rec.SentAt
	}
	switch rec.Status {
	case jobs.Mined:
		body["txHash"] = rec.TxHash.Hex()
		if rec.BlockNumber != nil {
			body["blockNumber"] = rec.BlockNumber.Uint64()
		}
		body["gasUsed"] = rec.GasUsed
		body["success"] = rec.Success
	case jobs.Failed:
		body["code"] = rec.Code
		body["reason"] = rec.Reason
	}

	writeJSON(w, http.StatusOK, body)
}
