package leaderboard

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func frameHTML(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal([]any{"$", "div", nil, payload})
	assert.NoError(t, err)
	inner := "5:" + string(raw)
	return "<html><body><script>self.__next_f.push([1," + strconv.Quote(inner) + "])</script></body></html>"
}

func gamePayload(gameID int64) map[string]any {
	return map[string]any{
		"gameId":                gameID,
		"gameName":              "Test Game",
		"lastUpdated":           "2026-08-01T00:00:00Z",
		"scorePagination":       map[string]any{"page": 1, "totalPages": 1},
		"transactionPagination": map[string]any{"page": 1, "totalPages": 1},
		"scoreData": []map[string]any{
			{"userId": "u1", "walletAddress": "0xaa", "score": 700, "rank": 1},
		},
		"transactionData": []map[string]any{},
	}
}

func TestExtractAndSelectPayload(t *testing.T) {
	html := frameHTML(t, gamePayload(64))

	frames, err := extractNextFPayloads(html)
	assert.NoError(t, err)
	assert.Len(t, frames, 1)

	payload, err := selectGamePayload(frames, 64)
	assert.NoError(t, err)
	assert.EqualValues(t, 64, payload.GameID)
	assert.Equal(t, "Test Game", payload.GameName)
	assert.Len(t, payload.ScoreData, 1)
	assert.EqualValues(t, 700, payload.ScoreData[0].Score)
}

func TestExtractFailsWithoutFrames(t *testing.T) {
	_, err := extractNextFPayloads("<html><body>plain page</body></html>")
	assert.Error(t, err)
}

func TestSelectSkipsNonMatchingGame(t *testing.T) {
	html := frameHTML(t, gamePayload(99))
	frames, err := extractNextFPayloads(html)
	assert.NoError(t, err)

	_, err = selectGamePayload(frames, 64)
	assert.Error(t, err)
}

func TestSelectMatchesGameIDInsideDataRows(t *testing.T) {
	payload := gamePayload(0)
	delete(payload, "gameId")
	payload["scoreData"] = []map[string]any{
		{"userId": "u1", "walletAddress": "0xaa", "score": 10, "rank": 1, "gameId": 64},
	}
	html := frameHTML(t, payload)

	frames, err := extractNextFPayloads(html)
	assert.NoError(t, err)
	got, err := selectGamePayload(frames, 64)
	assert.NoError(t, err)
	assert.Len(t, got.ScoreData, 1)
}

func TestMergerDedupsOnUserAndWallet(t *testing.T) {
	m := newMerger()
	m.add([]ScoreEntry{
		{UserID: "u1", WalletAddress: "0xaa", Score: 700, Rank: 1},
		{UserID: "u2", WalletAddress: "0xbb", Score: 500, Rank: 2},
	}, nil)
	m.add([]ScoreEntry{
		{UserID: "u1", WalletAddress: "0xaa", Score: 700, Rank: 1},
		{UserID: "u1", WalletAddress: "0xcc", Score: 300, Rank: 3},
	}, nil)

	scores, _ := m.result()
	assert.Len(t, scores, 3)

	seen := map[string]bool{}
	for _, s := range scores {
		key := s.UserID + "|" + s.WalletAddress
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestScoreForWalletIsCaseInsensitive(t *testing.T) {
	p := &Payload{ScoreData: []ScoreEntry{{UserID: "u1", WalletAddress: "0xAbCd", Score: 700, Rank: 1}}}
	assert.EqualValues(t, 700, p.ScoreForWallet("0xabcd"))
	assert.EqualValues(t, 0, p.ScoreForWallet("0x9999"))
}
