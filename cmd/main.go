package main

import (
	"context"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/arcadeforge/scoreforge/config"
	"github.com/arcadeforge/scoreforge/pkgs"
	"github.com/arcadeforge/scoreforge/pkgs/dispatcher"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/chain"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/utils"
	"github.com/arcadeforge/scoreforge/pkgs/intake"
	"github.com/arcadeforge/scoreforge/pkgs/jobs"
	"github.com/arcadeforge/scoreforge/pkgs/leaderboard"
	"github.com/arcadeforge/scoreforge/pkgs/ledger"
	"github.com/arcadeforge/scoreforge/pkgs/queue"
	"github.com/arcadeforge/scoreforge/pkgs/service"
	"github.com/arcadeforge/scoreforge/pkgs/submission"
	"github.com/arcadeforge/scoreforge/pkgs/unlock"
)

func main() {
	utils.InitLogger()
	config.LoadConfig()
	cfg := config.SettingsObj

	ctx := context.Background()

	client, err := chain.Dial(ctx, cfg.RpcUrl)
	if err != nil {
		log.Fatalf("failed to dial RPC: %v", err)
	}

	chainID, err := chain.MustQuery(ctx, 5, func() (*big.Int, error) {
		return client.ChainID(ctx)
	})
	if err != nil {
		log.Fatalf("failed to fetch chain id: %v", err)
	}
	log.Infof("connected to chain %s", chainID)

	signer, err := chain.NewSigner(cfg.PrivateKey, chainID)
	if err != nil {
		log.Fatalf("failed to load signer key: %v", err)
	}
	log.Infof("signer address %s", signer.Address().Hex())

	contract, err := chain.NewContract(cfg.ContractAddr, client)
	if err != nil {
		log.Fatalf("failed to bind contract: %v", err)
	}
	chain.CheckGameRole(ctx, contract, signer.Address())

	alerts := clients.Alerter{WebhookURL: cfg.AlertsWebhookUrl}

	windowLedger := ledger.New(cfg.ScoreWindow, cfg.ScorePerMinute)
	registry := jobs.New()
	pending := queue.New[*submission.Submission]()
	aggregator := leaderboard.NewAggregator(cfg.LeaderboardBase, cfg.LeaderboardTTL, alerts)

	backend := &dispatcher.ChainBackend{
		Signer:        signer,
		Contract:      contract,
		Client:        client,
		Confirmations: cfg.TxConfirmations,
	}
	batcher := dispatcher.New(
		pending, windowLedger, registry, backend, alerts,
		cfg.BatchInterval, cfg.RespondAfter, cfg.TxTimeout,
	)

	ledgerJanitorEvery := 30 * time.Second
	if cfg.ScoreWindow < ledgerJanitorEvery {
		ledgerJanitorEvery = cfg.ScoreWindow
	}
	go windowLedger.RunJanitor(ctx, ledgerJanitorEvery)
	go registry.RunJanitor(ctx, pkgs.JobJanitorEvery, pkgs.JobTTL)
	go batcher.Run(ctx)

	server := &service.Server{
		Port:        cfg.Port,
		HardTimeout: cfg.HardTimeout,
		SubmitScore: &intake.Handler{
			Ledger:        windowLedger,
			Registry:      registry,
			Pending:       pending,
			MinScore:      cfg.MinScoreEvent,
			MaxScore:      cfg.MaxScoreEvent,
			BatchInterval: cfg.BatchInterval,
			HardTimeout:   cfg.HardTimeout,
		},
		UnlockAll: &unlock.Handler{
			Registry:        registry,
			Pending:         pending,
			Aggregator:      aggregator,
			Alerts:          alerts,
			WalletProbeBase: cfg.LeaderboardBase,
			BatchInterval:   cfg.BatchInterval,
			HardTimeout:     cfg.HardTimeout,
		},
		Jobs: &service.JobsHandler{Registry: registry},
		Leaderboard: &service.LeaderboardHandler{
			Aggregator: aggregator,
			CacheMs:    cfg.LeaderboardTTL.Milliseconds(),
		},
		Health: &service.HealthHandler{
			Client:          client,
			Signer:          signer,
			Pending:         pending,
			WindowMs:        cfg.ScoreWindow.Milliseconds(),
			PerMinuteLimit:  cfg.ScorePerMinute,
			MinScoreEvent:   cfg.MinScoreEvent,
			MaxScoreEvent:   cfg.MaxScoreEvent,
			Confirmations:   cfg.TxConfirmations,
			TxTimeoutMs:     cfg.TxTimeout.Milliseconds(),
			BatchIntervalMs: cfg.BatchInterval.Milliseconds(),
			RespondAfterMs:  cfg.RespondAfter.Milliseconds(),
		},
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("api server exited: %v", err)
	}
}
