package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marta/sleuth/internal/schedule"
)

var watchCron string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Investigate on a cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		cronExpr := watchCron
		if cronExpr == "" {
			cronExpr = deps.cfg.WatchCron
		}

		// A tick is independent of the signal context so an in-flight
		// investigation finishes cleanly after Ctrl+C.
		sched := schedule.New(func() {
			if err := investigate(context.Background(), deps); err != nil {
				log.Printf("watch: investigation failed: %v", err)
			}
		})
		if err := sched.Start(cronExpr); err != nil {
			return err
		}

		<-ctx.Done()
		log.Println("watch: shutting down")
		sched.Stop()
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchCron, "cron", "", "cron expression (default from WATCH_CRON)")
	rootCmd.AddCommand(watchCmd)
}
