package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
	"github.com/arcadeforge/scoreforge/pkgs/ledger"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
)

const testWallet = "0x00000000000000000000000000000000000000ab"

func newHandler(l *ledger.Ledger) (*Handler, *jobs.Registry, *queue.Pending[*submission.Submission]) {
	registry := jobs.New()
	pending := queue.New[*submission.Submission]()
	h := &Handler{
		Ledger:        l,
		Registry:      registry,
		Pending:       pending,
		MinScore:      0,
		MaxScore:      100,
		BatchInterval: 5 * time.Second,
		HardTimeout:   50 * time.Millisecond,
	}
	return h, registry, pending
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/submitscore", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRejectsMalformedBody(t *testing.T) {
	h, _, pending := newHandler(ledger.New(60*time.Second, 10_000))
	rec := post(h, `{"walletAddress": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, pending.Len())
}

func TestRejectsInvalidAddress(t *testing.T) {
	h, _, pending := newHandler(ledger.New(60*time.Second, 10_000))
	rec := post(h, `{"walletAddress":"not-an-address","score":50}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, pending.Len())
}

func TestRejectsNegativeScore(t *testing.T) {
	h, _, pending := newHandler(ledger.New(60*time.Second, 10_000))
	rec := post(h, `{"walletAddress":"`+testWallet+`","score":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, pending.Len())
}

func TestRejectsScoreOutsideEventRange(t *testing.T) {
	l := ledger.New(60*time.Second, 10_000)
	h, _, pending := newHandler(l)

	rec := post(h, `{"walletAddress":"`+testWallet+`","score":150}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, pkgs.CodeScoreHacking, body["code"])
	assert.Contains(t, body["reason"], "[0,100]")

	// range violations never touch the ledger or the queue
	assert.EqualValues(t, 0, l.Sum(testWallet, time.Now()))
	assert.Equal(t, 0, pending.Len())
}

func TestRejectsWindowBreachWithDiagnostics(t *testing.T) {
	l := ledger.New(60*time.Second, 100)
	l.Reserve(testWallet, "other-job", 100, time.Now())
	h, _, pending := newHandler(l)

	rec := post(h, `{"walletAddress":"`+testWallet+`","score":10}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, pkgs.CodeScoreHacking, body["code"])
	window := body["window"].(map[string]any)
	assert.EqualValues(t, 100, window["used"])
	assert.EqualValues(t, 10, window["incoming"])
	assert.EqualValues(t, 100, window["limit"])
	assert.EqualValues(t, 60, window["seconds"])

	assert.Equal(t, 0, pending.Len())
}

func TestFailsafeAnswers202WithJobHandle(t *testing.T) {
	h, registry, pending := newHandler(ledger.New(60*time.Second, 10_000))

	// no dispatcher drains the queue, so the failsafe must answer
	rec := post(h, `{"walletAddress":"`+testWallet+`","score":50}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	jobID := rec.Header().Get("X-Job-Id")
	assert.NotEmpty(t, jobID)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["queued"])
	assert.Equal(t, jobID, body["jobId"])
	assert.Equal(t, "/api/v1/jobs/"+jobID, body["statusUrl"])
	assert.EqualValues(t, 5000, body["approxBatchInMs"])
	// the failsafe path never carries a nonce
	_, hasNonce := body["nonce"]
	assert.False(t, hasNonce)

	job, ok := registry.Get(jobID)
	assert.True(t, ok)
	assert.Equal(t, jobs.Queued, job.Status)
	assert.Equal(t, 1, pending.Len())
}

func TestSuccessfulReplyPassesThrough(t *testing.T) {
	l := ledger.New(60*time.Second, 10_000)
	h, _, pending := newHandler(l)
	h.HardTimeout = 2 * time.Second

	go func() {
		for {
			items := pending.DrainAll()
			if len(items) > 0 {
				items[0].Reply(submission.Reply{
					StatusCode: http.StatusOK,
					Body:       map[string]any{"ok": true, "txHash": "0xdead"},
				})
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	rec := post(h, `{"walletAddress":"`+testWallet+`","score":50}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0xdead", body["txHash"])
	// the reservation made at intake is still held for the mined path
	assert.EqualValues(t, 50, l.Sum(testWallet, time.Now()))
}
