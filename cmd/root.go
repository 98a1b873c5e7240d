package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"nsewatch/config"
	"nsewatch/logger"
	"nsewatch/provider"
	"nsewatch/snapshot"
	"nsewatch/universe"
)

var cfgPath string

var rootCMD = &cobra.Command{
	Use:   "nsewatch",
	Short: "NSE daily price-change snapshot service",
	Long: `A backend for daily NSE equity price-change snapshots.
It fetches historical closes from Yahoo Finance for the tracked symbol
universe, ranks day-over-day moves, caches finalized snapshots per date
and serves them over a REST API.`,
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "path to configuration file")
	rootCMD.AddCommand(serverCMD)
	rootCMD.AddCommand(snapshotCMD)
}

// setup loads configuration, configures logging and wires the snapshot
// service. Shared by the server and snapshot commands.
func setup() (*config.Config, *snapshot.Service, *logger.Log, error) {
	log := logger.GetLogger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, log, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, log, err
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return nil, nil, log, err
	}

	store := snapshot.NewStore(cfg.Cache.Dir)
	if err := store.EnsureDir(); err != nil {
		return nil, nil, log, err
	}

	closeHour, closeMinute, err := cfg.MarketClose()
	if err != nil {
		return nil, nil, log, err
	}

	loader := universe.NewLoader(cfg.Universe.CSVPath, cfg.Market.Suffix)
	client := provider.NewYahooClient(cfg.Provider.BaseURL, cfg.Provider.Proxy, cfg.Provider.Timeout)
	policy := snapshot.NewPolicy(closeHour, closeMinute, nil)

	svc := snapshot.NewService(loader, client, store, policy, cfg.Market.Suffix, log)
	return cfg, svc, log, nil
}
