package pkgs

import "time"

// Error codes surfaced to clients and stored on Job Records.
const (
	CodeScoreHacking     = "SUSPECTED_SCORE_HACKING"
	CodeNonceFetchFailed = "NONCE_FETCH_FAILED"
	CodeTxWaitTimeout    = "TX_WAIT_TIMEOUT"
	CodeCheckWalletError = "CHECK_WALLET_ERROR"
	CodeAccountNotSet    = "ACCOUNT_NOT_SET"
	CodeAlreadyMaxed     = "ALREADY_MAXED"
	CodeNoDelta          = "NO_DELTA"
	CodeJobNotFound      = "JOB_NOT_FOUND"
	CodeAggregateFailed  = "AGGREGATE_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Job statuses, in the order a Job Record moves through them.
const (
	JobQueued = "queued"
	JobSent   = "sent"
	JobMined  = "mined"
	JobFailed = "failed"
)

// Defaults for the settings config.LoadConfig reads from the environment,
// plus fixed limits (MaxPageWalk onward) that no environment variable
// overrides.
const (
	DefaultPort               = "3000"
	DefaultScoreWindowMs      = 60_000
	DefaultScorePerMinLimit   = 10_000
	DefaultMinScoreEvent      = 0
	DefaultMaxScoreEvent      = 100
	DefaultTxConfirmations    = 1
	DefaultTxTimeoutMs        = 120_000
	DefaultBatchIntervalMs    = 5_000
	DefaultRespondAfterMs     = 5_000
	DefaultHardTimeoutPadMs   = 5_000
	DefaultLeaderboardCacheMs = 15_000
	MaxPageWalk               = 50
	UnlockTargetScore         = 1200
	DefaultGameID             = 64

	JobTTL          = 15 * time.Minute
	JobJanitorEvery = 60 * time.Second
)
