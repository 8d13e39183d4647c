package service

import (
	"context"
	"net/http"
	"time"

	"github.com/arcadeforge/scoreforge/pkgs/helpers/chain"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
)

type HealthStatus struct {
	Status          string   `json:"status"`
	ChainID         int64    `json:"chainId,omitempty"`
	BlockNumber     uint64   `json:"blockNumber,omitempty"`
	SignerAddress   string   `json:"signerAddress"`
	QueueDepth      int      `json:"queueDepth"`
	WindowMs        int64    `json:"windowMs"`
	PerMinuteLimit  int64    `json:"perMinuteLimit"`
	EventRange      [2]int64 `json:"eventRange"`
	Confirmations   int      `json:"confirmations"`
	TxTimeoutMs     int64    `json:"txTimeoutMs"`
	BatchIntervalMs int64    `json:"batchIntervalMs"`
	RespondAfterMs  int64    `json:"respondAfterMs"`
}

type HealthHandler struct {
	Client          *chain.Client
	Signer          *chain.Signer
	Pending         *queue.Pending[*submission.Submission]
	WindowMs        int64
	PerMinuteLimit  int64
	MinScoreEvent   int64
	MaxScoreEvent   int64
	Confirmations   int
	TxTimeoutMs     int64
	BatchIntervalMs int64
	RespondAfterMs  int64
}

// ServeHTTP reports chain id, latest block number, signer address,
// queue depth, and the configured limits. An RPC failure degrades the
// response rather than failing the request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:          "ok",
		SignerAddress:   h.Signer.Address().Hex(),
		QueueDepth:      h.Pending.Len(),
		WindowMs:        h.WindowMs,
		PerMinuteLimit:  h.PerMinuteLimit,
		EventRange:      [2]int64{h.MinScoreEvent, h.MaxScoreEvent},
		Confirmations:   h.Confirmations,
		TxTimeoutMs:     h.TxTimeoutMs,
		BatchIntervalMs: h.BatchIntervalMs,
		RespondAfterMs:  h.RespondAfterMs,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	chainID, err := h.Client.ChainID(ctx)
	if err != nil {
		status.Status = "degraded"
		writeJSON(w, http.StatusOK, status)
		return
	}
	status.ChainID = chainID.Int64()

	block, err := h.Client.RefreshBlock(ctx)
	if err != nil {
		status.Status = "degraded"
		writeJSON(w, http.StatusOK, status)
		return
	}
	status.BlockNumber = block.NumberU64()

	writeJSON(w, http.StatusOK, status)
}
