package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frntpump/fnt-contracts/config"
	"github.com/frntpump/fnt-contracts/core"
	"github.com/frntpump/fnt-contracts/observability/logging"
	"github.com/frntpump/fnt-contracts/rpc"
	"github.com/frntpump/fnt-contracts/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("FNT_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if env == "" {
		env = cfg.Log.Env
	}

	logger := logging.Setup("fntd", env, logging.Rotation{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	deposit, err := cfg.ExistentialDepositAmount()
	if err != nil {
		logger.Error("Invalid existential deposit", slog.Any("error", err))
		os.Exit(1)
	}

	opts := []core.NodeOption{}
	if deposit != nil {
		opts = append(opts, core.WithExistentialDeposit(deposit))
	}
	node := core.NewNode(db, opts...)

	if err := applyGenesis(node, cfg.GenesisFile, logger); err != nil {
		logger.Error("Failed to apply genesis configs", slog.Any("error", err))
		os.Exit(1)
	}
	if err := applyPauses(node, cfg.Pauses); err != nil {
		logger.Error("Failed to apply pause switches", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger)
	httpSrv := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("RPC listening", slog.String("address", cfg.RPCAddress), slog.String("network", cfg.NetworkName))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("RPC server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown incomplete", slog.Any("error", err))
	}
}

// applyGenesis seeds the module configurations from the genesis document on
// a fresh database. A store with participants keeps whatever governance has
// configured since.
func applyGenesis(node *core.Node, path string, logger *slog.Logger) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	counters, err := node.Counters()
	if err != nil {
		return err
	}
	if counters.Participants > 0 {
		logger.Info("Skipping genesis configs on a populated store", slog.String("file", path))
		return nil
	}

	gen, err := config.LoadGenesis(path)
	if err != nil {
		return err
	}
	if gen.Purchase != nil {
		cfg, err := gen.Purchase.PurchaseConfig()
		if err != nil {
			return err
		}
		if err := node.SetPurchaseConfig(cfg); err != nil {
			return err
		}
	}
	if gen.Rewards != nil {
		cfg, err := gen.Rewards.RewardConfig()
		if err != nil {
			return err
		}
		if err := node.SetRewardConfig(cfg); err != nil {
			return err
		}
	}
	if gen.Claims != nil {
		cfg, err := gen.Claims.ClaimConfig()
		if err != nil {
			return err
		}
		if err := node.SetClaimConfig(cfg); err != nil {
			return err
		}
	}
	if gen.Staking != nil {
		cfg, err := gen.Staking.StakingConfig()
		if err != nil {
			return err
		}
		if err := node.SetStakingConfig(cfg); err != nil {
			return err
		}
	}
	logger.Info("Applied genesis configs", slog.String("file", path))
	return nil
}

func applyPauses(node *core.Node, pauses config.Pauses) error {
	for module, paused := range map[string]bool{
		"registry": pauses.Registry,
		"purchase": pauses.Purchase,
		"claims":   pauses.Claims,
		"staking":  pauses.Staking,
	} {
		if !paused {
			continue
		}
		if err := node.SetModulePaused(module, true); err != nil {
			return err
		}
	}
	return nil
}
