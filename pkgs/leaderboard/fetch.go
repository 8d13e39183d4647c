package leaderboard

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
)

var fetchHTTPClient = &http.Client{
	Timeout:   10 * time.Second,
	Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
}

type Fetcher struct {
	Base   string
	Alerts clients.Alerter
}

func NewFetcher(base string, alerts clients.Alerter) *Fetcher {
	return &Fetcher{Base: base, Alerts: alerts}
}

func (f *Fetcher) fetchPage(ctx context.Context, gameID int64, page int) (string, error) {
	url := fmt.Sprintf("%s/games/%d?page=%d", f.Base, gameID, page)

	var body string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := fetchHTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("leaderboard page %d returned %d", page, resp.StatusCode)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(b)
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 2), ctx))
	return body, err
}

// FetchAll walks every page for gameID starting at 1, merging and
// de-duplicating as it goes. A failure past page 1 keeps the partial
// result; a page-1 failure is fatal for the whole walk.
func (f *Fetcher) FetchAll(ctx context.Context, gameID int64) (*Payload, error) {
	firstPage, err := f.fetchPage(ctx, gameID, 1)
	if err != nil {
		f.Alerts.Notify("leaderboard", fmt.Sprintf("page 1 fetch failed for gameId=%d: %v", gameID, err), "Medium")
		return nil, fmt.Errorf("failed to fetch page 1: %w", err)
	}
	frames, err := extractNextFPayloads(firstPage)
	if err != nil {
		return nil, err
	}
	payload, err := selectGamePayload(frames, gameID)
	if err != nil {
		return nil, err
	}

	totalPages := payload.ScorePagination.TotalPages
	if payload.TransactionPagination.TotalPages > totalPages {
		totalPages = payload.TransactionPagination.TotalPages
	}
	if totalPages > pkgs.MaxPageWalk {
		log.Warnf("leaderboard gameId=%d reports %d pages, capping walk at %d", gameID, totalPages, pkgs.MaxPageWalk)
		totalPages = pkgs.MaxPageWalk
	}

	merger := newMerger()
	merger.add(payload.ScoreData, payload.TransactionData)
	pagesWalked := 1

	for page := 2; page <= totalPages; page++ {
		html, err := f.fetchPage(ctx, gameID, page)
		if err != nil {
			log.Warnf("leaderboard gameId=%d: stopping walk at page %d: %v", gameID, page, err)
			break
		}
		frames, err := extractNextFPayloads(html)
		if err != nil {
			log.Warnf("leaderboard gameId=%d: stopping walk at page %d: %v", gameID, page, err)
			break
		}
		pagePayload, err := selectGamePayload(frames, gameID)
		if err != nil {
			log.Warnf("leaderboard gameId=%d: stopping walk at page %d: %v", gameID, page, err)
			break
		}
		if len(pagePayload.ScoreData) == 0 && len(pagePayload.TransactionData) == 0 {
			break
		}
		merger.add(pagePayload.ScoreData, pagePayload.TransactionData)
		pagesWalked++
	}

	scoreData, txData := merger.result()
	sort.Slice(scoreData, func(i, j int) bool { return scoreData[i].Rank < scoreData[j].Rank })
	sort.Slice(txData, func(i, j int) bool { return txData[i].Rank < txData[j].Rank })

	payload.ScoreData = scoreData
	payload.TransactionData = txData
	payload.Source = Source{Base: f.Base, Pages: pagesWalked, FetchedAt: time.Now()}
	return payload, nil
}

// merger de-duplicates by (userId, walletAddress) across pages.
type merger struct {
	scoreSeen map[string]bool
	txSeen    map[string]bool
	scores    []ScoreEntry
	txs       []TransactionEntry
}

func newMerger() *merger {
	return &merger{scoreSeen: map[string]bool{}, txSeen: map[string]bool{}}
}

func (m *merger) add(scores []ScoreEntry, txs []TransactionEntry) {
	for _, s := range scores {
		key := dedupKey(s.UserID, s.WalletAddress)
		if m.scoreSeen[key] {
			continue
		}
		m.scoreSeen[key] = true
		m.scores = append(m.scores, s)
	}
	for _, t := range txs {
		key := dedupKey(t.UserID, t.WalletAddress)
		if m.txSeen[key] {
			continue
		}
		m.txSeen[key] = true
		m.txs = append(m.txs, t)
	}
}

func (m *merger) result() ([]ScoreEntry, []TransactionEntry) {
	return m.scores, m.txs
}

func dedupKey(userID, walletAddress string) string {
	return userID + "|" + walletAddress
}
