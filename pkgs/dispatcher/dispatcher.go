// Package dispatcher is the batch dispatcher: every tick it drains the
// pending queue, assigns contiguous nonces to the surviving
// subsequence, serializes sends, and waits receipts in the background.
// It never retries a send within a tick — the batch stops on the first
// send error and requeues the remainder so the nonce stream never gaps.
package dispatcher

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/chain"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
	"github.com/arcadeforge/scoreforge/pkgs/ledger"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
)

const gasEstimateFallback = 120_000

type Dispatcher struct {
	pending  *queue.Pending[*submission.Submission]
	ledger   *ledger.Ledger
	registry *jobs.Registry
	backend  Backend
	alerts   clients.Alerter

	batchInterval time.Duration
	ackAfter      time.Duration
	txTimeout     time.Duration

	ticking atomic.Bool
}

func New(
	pending *queue.Pending[*submission.Submission],
	l *ledger.Ledger,
	registry *jobs.Registry,
	backend Backend,
	alerts clients.Alerter,
	batchInterval, ackAfter, txTimeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		pending:       pending,
		ledger:        l,
		registry:      registry,
		backend:       backend,
		alerts:        alerts,
		batchInterval: batchInterval,
		ackAfter:      ackAfter,
		txTimeout:     txTimeout,
	}
}

// Run ticks every batchInterval until ctx is cancelled. Overlap
// suppression is handled by Tick itself via the ticking flag, so a slow
// tick causes the next scheduled one to be skipped rather than queueing
// up behind it.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.batchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go d.Tick(ctx)
		}
	}
}

// Tick runs one batch cycle. Safe to call concurrently; a tick already
// in flight causes a later call to return immediately.
func (d *Dispatcher) Tick(ctx context.Context) {
	if !d.ticking.CompareAndSwap(false, true) {
		return
	}
	defer d.ticking.Store(false)

	batch := d.pending.DrainAll()
	if len(batch) == 0 {
		return
	}

	baseNonce, err := d.backend.BaseNonce(ctx)
	if err != nil {
		log.Errorf("batch tick: failed to fetch base nonce: %v", err)
		d.alerts.Notify("dispatcher", fmt.Sprintf("base nonce fetch failed, dropping batch of %d: %v", len(batch), err), "High")
		for _, sub := range batch {
			d.failItem(sub, pkgs.CodeNonceFetchFailed, "failed to fetch nonce", http.StatusInternalServerError)
		}
		return
	}

	fees, err := d.backend.SuggestFees(ctx)
	if err != nil {
		log.Warnf("batch tick: fee suggestion failed, proceeding without fee overrides: %v", err)
	}

	nonce := baseNonce
	for i, sub := range batch {
		if !d.admit(sub) {
			// the nonce this slot would have used goes to the next item
			continue
		}

		gasLimit := d.estimateGasLimit(ctx, sub)

		d.registry.Update(sub.ID, func(r *jobs.Record) {
			now := time.Now()
			r.Status = jobs.Sent
			r.SentAt = &now
			n := nonce
			r.Nonce = &n
		})

		txHash, sendErr := d.backend.Send(ctx, nonce, fees, gasLimit, commonAddress(sub.AddrLower), big.NewInt(sub.Score))
		if sendErr != nil {
			classified := chain.ClassifySendError(sendErr)
			log.Errorf("batch tick: send failed at nonce %d (kind=%v): %v", nonce, classified.Kind, sendErr)
			d.alerts.Notify("dispatcher", fmt.Sprintf("send failed at nonce %d, requeueing %d items: %v", nonce, len(batch)-i-1, sendErr), "High")
			d.failItem(sub, pkgs.CodeInternalError, fmt.Sprintf("send failed: %v", sendErr), http.StatusInternalServerError)
			d.requeueRemainder(batch[i+1:])
			return
		}

		sent := nonce
		nonce++
		d.armAckTimer(sub, sent)
		go d.waitReceipt(sub, txHash, sent)
	}
}

// admit re-checks the ledger for non-privileged items whose reservation
// was released by an earlier requeue. On denial it replies 403 without
// consuming a nonce for this position.
func (d *Dispatcher) admit(sub *submission.Submission) bool {
	if sub.SkipWindow || sub.ReservationHeld {
		return true
	}
	ok, denial := d.ledger.Reserve(sub.AddrLower, sub.ID, sub.Score, time.Now())
	if !ok {
		d.registry.Update(sub.ID, func(r *jobs.Record) {
			r.Status = jobs.Failed
			r.Code = pkgs.CodeScoreHacking
			r.Reason = fmt.Sprintf("window breach: used=%d incoming=%d limit=%d seconds=%d", denial.Used, denial.Incoming, denial.Limit, denial.Seconds)
		})
		sub.Reply(submission.Reply{
			StatusCode: http.StatusForbidden,
			Body: map[string]any{
				"code":   pkgs.CodeScoreHacking,
				"reason": "per-wallet score window exceeded",
				"window": map[string]any{
					"used":     denial.Used,
					"incoming": denial.Incoming,
					"limit":    denial.Limit,
					"seconds":  denial.Seconds,
				},
			},
		})
		return false
	}
	sub.ReservationHeld = true
	return true
}

func (d *Dispatcher) estimateGasLimit(ctx context.Context, sub *submission.Submission) uint64 {
	estimate, err := d.backend.EstimateGas(ctx, commonAddress(sub.AddrLower), big.NewInt(sub.Score))
	if err != nil {
		log.Warnf("gas estimate failed for %s, falling back to default: %v", sub.ID, err)
		estimate = gasEstimateFallback
	}
	return estimate*12/10 + 5_000
}

func (d *Dispatcher) armAckTimer(sub *submission.Submission, nonce uint64) {
	timer := time.AfterFunc(d.ackAfter, func() {
		sub.Reply(submission.Reply{
			StatusCode: http.StatusAccepted,
			Headers:    map[string]string{"X-Job-Id": sub.ID},
			Body: map[string]any{
				"ok":        true,
				"queued":    true,
				"jobId":     sub.ID,
				"statusUrl": statusURL(sub.ID),
				"nonce":     nonce,
				"ackMs":     d.ackAfter.Milliseconds(),
			},
		})
	})
	sub.ArmTimers(nil, func() { timer.Stop() })
}

func (d *Dispatcher) waitReceipt(sub *submission.Submission, txHash string, nonce uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), d.txTimeout)
	defer cancel()

	receipt, err := d.backend.WaitReceipt(ctx, txHash)
	if err != nil {
		if ctx.Err() != nil {
			d.registry.Update(sub.ID, func(r *jobs.Record) {
				r.Status = jobs.Failed
				r.Code = pkgs.CodeTxWaitTimeout
				r.Reason = "receipt not observed within the wait deadline"
			})
			d.rollback(sub)
			sub.Reply(submission.Reply{
				StatusCode: http.StatusGatewayTimeout,
				Body: map[string]any{
					"ok":     false,
					"code":   pkgs.CodeTxWaitTimeout,
					"reason": "timed out waiting for transaction receipt",
				},
			})
			return
		}
		d.failItem(sub, pkgs.CodeInternalError, fmt.Sprintf("receipt wait failed: %v", err), http.StatusInternalServerError)
		return
	}

	blockNumber := receipt.BlockNumber
	gasUsed := receipt.GasUsed
	success := receipt.Status == types.ReceiptStatusSuccessful

	d.registry.Update(sub.ID, func(r *jobs.Record) {
		r.Status = jobs.Mined
		r.TxHash = receipt.TxHash
		r.BlockNumber = blockNumber
		r.GasUsed = gasUsed
		r.Success = success
	})

	sub.Reply(submission.Reply{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"ok":          true,
			"txHash":      receipt.TxHash.Hex(),
			"blockNumber": blockNumber.Uint64(),
			"status":      receipt.Status,
			"gasUsed":     gasUsed,
			"to":          sub.WalletAddress,
			"from":        d.backend.SignerAddress().Hex(),
			"nonce":       nonce,
		},
	})
}

func (d *Dispatcher) failItem(sub *submission.Submission, code, reason string, status int) {
	d.registry.Update(sub.ID, func(r *jobs.Record) {
		r.Status = jobs.Failed
		r.Code = code
		r.Reason = reason
	})
	d.rollback(sub)
	sub.Reply(submission.Reply{
		StatusCode: status,
		Body: map[string]any{
			"error":  "Transaction failed",
			"code":   code,
			"reason": reason,
		},
	})
}

func (d *Dispatcher) rollback(sub *submission.Submission) {
	if sub.ReservationHeld {
		d.ledger.Rollback(sub.AddrLower, sub.ID)
		sub.ReservationHeld = false
	}
}

// requeueRemainder resets every item after a mid-batch send failure to
// queued, releases held reservations, and pushes them back to the front
// of pending in their original order, so the next tick re-admits them
// with fresh nonces.
func (d *Dispatcher) requeueRemainder(remainder []*submission.Submission) {
	for _, sub := range remainder {
		d.rollback(sub)
		d.registry.Update(sub.ID, func(r *jobs.Record) {
			r.Status = jobs.Queued
			r.SentAt = nil
			r.Nonce = nil
		})
	}
	d.pending.PushFront(remainder)
}

func statusURL(jobID string) string {
	return "/api/v1/jobs/" + jobID
}

func commonAddress(addrLower string) common.Address {
	return common.HexToAddress(addrLower)
}
