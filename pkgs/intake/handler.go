// Package intake validates a score event, pre-reserves a sliding-window
// ledger slot, enqueues the submission, arms the per-request failsafe
// timer, and holds the HTTP response open until a terminal reply fires.
package intake

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sugawarayuuta/sonnet"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/utils"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
	"github.com/arcadeforge/scoreforge/pkgs/ledger"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
)

type request struct {
	WalletAddress string `json:"walletAddress"`
	Score         int64  `json:"score"`
}

type Handler struct {
	Ledger        *ledger.Ledger
	Registry      *jobs.Registry
	Pending       *queue.Pending[*submission.Submission]
	MinScore      int64
	MaxScore      int64
	BatchInterval time.Duration
	HardTimeout   time.Duration
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	var req request
	if err := sonnet.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !utils.IsValidAddress(req.WalletAddress) {
		http.Error(w, "invalid walletAddress", http.StatusBadRequest)
		return
	}
	if req.Score < 0 {
		http.Error(w, "score must be non-negative", http.StatusBadRequest)
		return
	}
	if req.Score < h.MinScore || req.Score > h.MaxScore {
		writeDenied(w, pkgs.CodeScoreHacking, fmt.Sprintf("score outside permitted range [%d,%d]", h.MinScore, h.MaxScore), nil)
		return
	}

	addrLower := utils.CanonicalAddress(req.WalletAddress)
	jobID := uuid.NewString()
	now := time.Now()

	ok, denial := h.Ledger.Reserve(addrLower, jobID, req.Score, now)
	if !ok {
		writeDenied(w, pkgs.CodeScoreHacking, "per-wallet score window exceeded", map[string]any{
			"used":     denial.Used,
			"incoming": denial.Incoming,
			"limit":    denial.Limit,
			"seconds":  denial.Seconds,
		})
		return
	}

	sub := BuildSubmission(h.Registry, h.Pending, jobID, req.WalletAddress, addrLower, req.Score, false, true, h.BatchInterval, h.HardTimeout)
	log.Debugf("intake: enqueued %s for %s score=%d", jobID, addrLower, req.Score)

	reply := sub.Wait()
	submission.WriteJSON(w, reply)
}

// BuildSubmission creates the job record and submission for jobID, arms
// its failsafe timer, and enqueues it. The unlock path shares this.
// reservationHeld marks whether a ledger slot was reserved for jobID
// before the call; skipWindow items never reserve.
//
// The failsafe 202 carries no nonce: if it fires first, the item has
// not necessarily been sent yet.
func BuildSubmission(
	registry *jobs.Registry,
	pending *queue.Pending[*submission.Submission],
	jobID, walletAddress, addrLower string,
	score int64,
	skipWindow, reservationHeld bool,
	batchInterval, hardTimeout time.Duration,
) *submission.Submission {
	sub := submission.New(jobID, walletAddress, addrLower, score, skipWindow)
	sub.ReservationHeld = reservationHeld

	registry.Put(&jobs.Record{
		ID:            jobID,
		Status:        jobs.Queued,
		CreatedAt:     time.Now(),
		WalletAddress: walletAddress,
		Score:         score,
		UnlockAll:     skipWindow,
	})

	failsafe := time.AfterFunc(hardTimeout, func() {
		sub.Reply(submission.Reply{
			StatusCode: http.StatusAccepted,
			Headers:    map[string]string{"X-Job-Id": jobID},
			Body: map[string]any{
				"ok":              true,
				"queued":          true,
				"jobId":           jobID,
				"statusUrl":       "/api/v1/jobs/" + jobID,
				"approxBatchInMs": batchInterval.Milliseconds(),
			},
		})
	})
	sub.ArmTimers(func() { failsafe.Stop() }, nil)

	pending.Append(sub)
	return sub
}

func writeDenied(w http.ResponseWriter, code, reason string, window map[string]any) {
	body := map[string]any{"code": code, "reason": reason}
	if window != nil {
		body["window"] = window
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	out, _ := sonnet.Marshal(body)
	_, _ = w.Write(out)
}
