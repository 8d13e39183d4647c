// Package unlock is the privileged unlock path: it bypasses the
// sliding-window ledger entirely and submits a score delta computed to
// bring a wallet's leaderboard score up to a fixed target.
package unlock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/utils"
	"github.com/arcadeforge/scoreforge/pkgs/intake"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
	"github.com/arcadeforge/scoreforge/pkgs/leaderboard"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
)

type request struct {
	WalletAddress string `json:"walletAddress"`
	GameID        int64  `json:"gameId"`
}

type Handler struct {
	Registry        *jobs.Registry
	Pending         *queue.Pending[*submission.Submission]
	Aggregator      *leaderboard.Aggregator
	Alerts          clients.Alerter
	WalletProbeBase string
	BatchInterval   time.Duration
	HardTimeout     time.Duration
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !utils.IsValidAddress(req.WalletAddress) {
		http.Error(w, "invalid walletAddress", http.StatusBadRequest)
		return
	}
	if req.GameID == 0 {
		req.GameID = pkgs.DefaultGameID
	}

	ctx := r.Context()

	hasUsername, err := clients.ProbeWalletHasUsername(ctx, h.WalletProbeBase, req.WalletAddress)
	if err != nil {
		log.Errorf("unlock: wallet probe failed for %s: %v", req.WalletAddress, err)
		h.Alerts.Notify("unlock", "wallet probe transport error: "+err.Error(), "Medium")
		writeError(w, http.StatusBadGateway, pkgs.CodeCheckWalletError, "failed to verify wallet")
		return
	}
	if !hasUsername {
		writeError(w, http.StatusForbidden, pkgs.CodeAccountNotSet, "wallet has no registered username")
		return
	}

	payload, err := h.Aggregator.Get(ctx, req.GameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, pkgs.CodeAggregateFailed, "failed to load leaderboard")
		return
	}

	addrLower := utils.CanonicalAddress(req.WalletAddress)
	currentScore := payload.ScoreForWallet(addrLower)
	delta := pkgs.UnlockTargetScore - currentScore

	if delta < 0 {
		writeError(w, http.StatusConflict, pkgs.CodeAlreadyMaxed, "wallet already above target score")
		return
	}
	if delta == 0 {
		writeError(w, http.StatusConflict, pkgs.CodeNoDelta, "wallet already at target score, no delta to submit")
		return
	}

	jobID := uuid.NewString()
	sub := intake.BuildSubmission(h.Registry, h.Pending, jobID, req.WalletAddress, addrLower, delta, true, false, h.BatchInterval, h.HardTimeout)
	log.Infof("unlock: enqueued %s for %s delta=%d", jobID, addrLower, delta)

	reply := sub.Wait()
	submission.WriteJSON(w, reply)
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out, _ := json.Marshal(map[string]any{"code": code, "reason": reason})
	_, _ = w.Write(out)
}
