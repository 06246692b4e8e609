package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the search periodically on a cron spec",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindFlags(cmd, searchFlagKeys)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spec, _ := cmd.Flags().GetString("cron")
		now, _ := cmd.Flags().GetBool("now")

		s, err := newSearcher(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return schedule(ctx, s, spec, now)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	addSearchFlags(scheduleCmd)

	scheduleCmd.Flags().String("cron", "@every 6h", "cron spec, e.g. \"@every 6h\" or \"0 9 * * 1-5\"")
	scheduleCmd.Flags().Bool("now", true, "run once immediately instead of waiting for the first tick")
}

// schedule blocks until ctx ends. A tick that fires while the previous
// search, scheduled or immediate, is still running is skipped.
func schedule(ctx context.Context, s *searcher, spec string, now bool) error {
	return runSchedule(ctx, s.log, spec, now, s.Run)
}

func runSchedule(ctx context.Context, log *zap.Logger, spec string, now bool, search func(context.Context) error) error {
	cl := cronLogger{log.Sugar()}
	c := cron.New(cron.WithLogger(cl))

	job := scheduledJob(ctx, log, cl, search)
	if _, err := c.AddJob(spec, job); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	c.Start()
	log.Info("scheduler started", zap.String("spec", spec))

	var wg sync.WaitGroup
	if now {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	// running searches see the cancellation and finish their writes
	<-c.Stop().Done()
	wg.Wait()
	log.Info("scheduler stopped")
	return nil
}

// scheduledJob wraps search so that at most one run is in flight.
func scheduledJob(ctx context.Context, log *zap.Logger, cl cron.Logger, search func(context.Context) error) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		if err := search(ctx); err != nil {
			log.Error("scheduled search failed", zap.Error(err))
		}
	}))
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
