// Package submission models a single score-submission request in
// flight: its once-only reply guard and the timers racing to fire it.
// Three sources can answer a request (receipt waiter, early-ack timer,
// failsafe timer); the first one through the sync.Once wins and the
// rest become no-ops.
package submission

import (
	"net/http"
	"sync"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Reply is whatever the HTTP handler needs to write out once a
// Submission reaches a terminal state. Callers build this from a Job
// Record; submission itself is agnostic to the JSON shape.
type Reply struct {
	StatusCode int
	Body       any
	Headers    map[string]string
}

// Submission is owned exclusively by intake until enqueued, then by the
// dispatcher until terminal.
type Submission struct {
	ID              string
	WalletAddress   string
	AddrLower       string
	Score           int64
	SkipWindow      bool
	ReservationHeld bool
	AcceptedAt      time.Time

	once   sync.Once
	done   chan struct{}
	result Reply

	mu           sync.Mutex
	failsafeStop func()
	ackStop      func()
}

func New(id, walletAddress, addrLower string, score int64, skipWindow bool) *Submission {
	return &Submission{
		ID:            id,
		WalletAddress: walletAddress,
		AddrLower:     addrLower,
		Score:         score,
		SkipWindow:    skipWindow,
		AcceptedAt:    time.Now(),
		done:          make(chan struct{}),
	}
}

// ArmTimers registers the stop functions for the failsafe and early-ack
// timers so Reply can cancel both on whichever path wins — including
// the failsafe path, which would otherwise leave the ack timer to fire
// a wasted no-op tick. Either argument may be nil if that timer hasn't
// been armed yet.
func (s *Submission) ArmTimers(failsafeStop, ackStop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if failsafeStop != nil {
		s.failsafeStop = failsafeStop
	}
	if ackStop != nil {
		s.ackStop = ackStop
	}
}

// Reply delivers r exactly once; every caller after the first sees
// no-op. Returns true if this call was the one that won.
func (s *Submission) Reply(r Reply) bool {
	won := false
	s.once.Do(func() {
		won = true
		s.result = r
		s.cancelTimers()
		close(s.done)
	})
	return won
}

// Wait blocks until a reply has been delivered, then returns it.
func (s *Submission) Wait() Reply {
	<-s.done
	return s.result
}

// Done reports whether a reply has already been delivered, without
// blocking.
func (s *Submission) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Submission) cancelTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failsafeStop != nil {
		s.failsafeStop()
	}
	if s.ackStop != nil {
		s.ackStop()
	}
}

// WriteJSON is a small helper handlers use once Wait returns; kept here
// so every caller writes replies the same way (status, X-Job-Id header
// when present, JSON body).
func WriteJSON(w http.ResponseWriter, r Reply) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	body, err := sonnet.Marshal(r.Body)
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}
