// Package jobs is the in-memory job registry: job id to lifecycle
// record, with TTL eviction. Nothing here survives a process restart.
package jobs

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Status string

const (
	Queued Status = "queued"
	Sent   Status = "sent"
	Mined  Status = "mined"
	Failed Status = "failed"
)

// Record is a job's lifecycle state. Nonce, TxHash, and the receipt
// fields are only meaningful once Status has advanced past Queued.
type Record struct {
	ID            string
	Status        Status
	CreatedAt     time.Time
	WalletAddress string
	Score         int64
	UnlockAll     bool

	Nonce  *uint64
	SentAt *time.Time

	TxHash      common.Hash
	BlockNumber *big.Int
	GasUsed     uint64
	Success     bool

	Code   string
	Reason string
}

type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
}

func New() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

func (r *Registry) Put(rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
}

func (r *Registry) Get(id string) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

// Update applies fn to the record under lock, so read-modify-write
// transitions (e.g. queued -> sent with a nonce) can't race with a
// concurrent eviction or another field mutation.
func (r *Registry) Update(id string, fn func(*Record)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
}

// RunJanitor evicts records older than ttl on interval until ctx is
// cancelled.
func (r *Registry) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.evictExpired(now, ttl)
		}
	}
}

func (r *Registry) evictExpired(now time.Time, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.records {
		if now.Sub(rec.CreatedAt) > ttl {
			delete(r.records, id)
		}
	}
}
