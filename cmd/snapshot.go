package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nsewatch/logger"
)

var snapshotCMD = &cobra.Command{
	Use:   "snapshot [date]",
	Short: "Build the snapshot for a date (defaults to today)",
	Long: `Build and, when the cache policy allows, persist the price-change
snapshot for one date without starting the server. Useful for warming
the cache or backfilling past dates.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, svc, log, err := setup()
		if err != nil {
			log.WithError(err).Error("failed to initialize")
			os.Exit(1)
		}

		date := svc.Today()
		if len(args) == 1 {
			date = args[0]
		}

		snap, err := svc.SnapshotForDate(context.Background(), date)
		if err != nil {
			log.WithComponent("snapshot").WithError(err).WithFields(logger.Fields{
				"date": date,
			}).Error("snapshot build failed")
			os.Exit(1)
		}

		fmt.Printf("Snapshot for %s: %d symbols\n", date, len(snap))
	},
}
