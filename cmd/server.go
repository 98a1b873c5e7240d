package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"nsewatch/api"
	"nsewatch/logger"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server serving snapshot, detail and history endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, svc, log, err := setup()
		if err != nil {
			log.WithError(err).Error("failed to initialize")
			os.Exit(1)
		}

		if spec := cfg.Schedule.WarmCron; spec != "" {
			c := cron.New()
			_, err := c.AddFunc(spec, func() {
				if err := svc.WarmToday(context.Background()); err != nil {
					log.WithComponent("warm").WithError(err).Error("warm job failed")
				} else {
					log.WithComponent("warm").Info("today's snapshot warmed")
				}
			})
			if err != nil {
				log.WithError(err).Error("invalid warm cron spec")
				os.Exit(1)
			}
			c.Start()
			defer c.Stop()
			log.WithFields(logger.Fields{"cron": spec}).Info("cache warm job scheduled")
		}

		r := api.SetupRoutes(svc, log)

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.WithFields(logger.Fields{"addr": addr}).Info("starting server")
		if err := r.Run(addr); err != nil {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	},
}
