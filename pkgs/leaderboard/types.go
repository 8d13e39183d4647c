// Package leaderboard walks the upstream site's paginated HTML,
// extracts the JSON payloads embedded in it, merges and de-duplicates
// the result, and caches it with a TTL.
package leaderboard

import (
	"strings"
	"time"
)

type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

type ScoreEntry struct {
	UserID        string `json:"userId"`
	WalletAddress string `json:"walletAddress"`
	Score         int64  `json:"score"`
	Rank          int    `json:"rank"`
}

type TransactionEntry struct {
	UserID            string `json:"userId"`
	WalletAddress     string `json:"walletAddress"`
	TransactionAmount int64  `json:"transactionAmount"`
	Rank              int    `json:"rank"`
}

type Source struct {
	Base      string    `json:"base"`
	Pages     int       `json:"pages"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Payload is the shape extracted from one self.__next_f.push frame,
// and also the shape returned to clients after merging all pages.
type Payload struct {
	GameID                int64              `json:"gameId"`
	GameName              string             `json:"gameName"`
	LastUpdated           string             `json:"lastUpdated"`
	ScorePagination       Pagination         `json:"scorePagination"`
	TransactionPagination Pagination         `json:"transactionPagination"`
	ScoreData             []ScoreEntry       `json:"scoreData"`
	TransactionData       []TransactionEntry `json:"transactionData"`
	Source                Source             `json:"source"`
}

// ScoreForWallet returns the score recorded for addrLower, or 0 if the
// wallet has no entry. The unlock path uses this to compute its delta.
func (p *Payload) ScoreForWallet(addrLower string) int64 {
	for _, e := range p.ScoreData {
		if strings.EqualFold(e.WalletAddress, addrLower) {
			return e.Score
		}
	}
	return 0
}
