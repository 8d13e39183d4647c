package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/arcadeforge/scoreforge/pkgs"
)

var SettingsObj *Settings

type Settings struct {
	RpcUrl           string
	PrivateKey       string
	ContractAddress  string
	ContractAddr     common.Address
	Port             string
	NodeEnv          string
	Debug            bool
	LeaderboardBase  string
	AlertsWebhookUrl string

	ScoreWindow     time.Duration
	ScorePerMinute  int64
	MinScoreEvent   int64
	MaxScoreEvent   int64
	TxConfirmations int
	TxTimeout       time.Duration
	BatchInterval   time.Duration
	RespondAfter    time.Duration
	HardTimeout     time.Duration
	LeaderboardTTL  time.Duration
}

// LoadConfig fatals on a missing required variable and otherwise fills
// every optional one with its default.
func LoadConfig() {
	missing := []string{}
	required := []string{"RPC_URL", "PRIVATE_KEY", "CONTRACT_ADDRESS"}
	for _, name := range required {
		if getEnv(name, "") == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("Missing required environment variables: %v", missing)
	}

	cfg := Settings{
		RpcUrl:           getEnv("RPC_URL", ""),
		PrivateKey:       getEnv("PRIVATE_KEY", ""),
		ContractAddress:  getEnv("CONTRACT_ADDRESS", ""),
		Port:             getEnv("PORT", pkgs.DefaultPort),
		NodeEnv:          getEnv("NODE_ENV", "production"),
		LeaderboardBase:  getEnv("LEADERBOARD_BASE", ""),
		AlertsWebhookUrl: getEnv("ALERTS_WEBHOOK_URL", ""),
	}
	cfg.ContractAddr = common.HexToAddress(cfg.ContractAddress)

	debug, err := strconv.ParseBool(getEnv("DEBUG", "false"))
	if err != nil {
		log.Warnf("Failed to parse DEBUG, defaulting to false: %v", err)
	}
	cfg.Debug = debug

	cfg.ScoreWindow = envDurationMs("SCORE_WINDOW_MS", pkgs.DefaultScoreWindowMs)
	cfg.ScorePerMinute = envInt64("SCORE_PER_MIN_LIMIT", pkgs.DefaultScorePerMinLimit)
	cfg.MinScoreEvent = envInt64("MIN_SCORE_EVENT", pkgs.DefaultMinScoreEvent)
	cfg.MaxScoreEvent = envInt64("MAX_SCORE_EVENT", pkgs.DefaultMaxScoreEvent)
	cfg.TxConfirmations = int(envInt64("TX_CONFIRMATIONS", pkgs.DefaultTxConfirmations))
	cfg.TxTimeout = envDurationMs("TX_TIMEOUT_MS", pkgs.DefaultTxTimeoutMs)
	cfg.BatchInterval = envDurationMs("BATCH_INTERVAL_MS", pkgs.DefaultBatchIntervalMs)
	cfg.RespondAfter = envDurationMs("RESPOND_AFTER_MS", pkgs.DefaultRespondAfterMs)

	defaultHard := cfg.BatchInterval + cfg.RespondAfter + pkgs.DefaultHardTimeoutPadMs*time.Millisecond
	cfg.HardTimeout = envDurationMs("REQUEST_HARD_TIMEOUT_MS", int64(defaultHard/time.Millisecond))

	cfg.LeaderboardTTL = envDurationMs("LEADERBOARD_CACHE_MS", pkgs.DefaultLeaderboardCacheMs)

	SettingsObj = &cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func envInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warnf("Failed to parse %s, using default %d: %v", key, defaultValue, err)
		return defaultValue
	}
	return parsed
}

func envDurationMs(key string, defaultMs int64) time.Duration {
	return time.Duration(envInt64(key, defaultMs)) * time.Millisecond
}
