package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/config"
	"github.com/rsilvagit/job-searcher/internal/logger"
	"github.com/rsilvagit/job-searcher/internal/metrics"
	"github.com/rsilvagit/job-searcher/internal/output"
	"github.com/rsilvagit/job-searcher/internal/pacer"
	"github.com/rsilvagit/job-searcher/internal/pipeline"
	"github.com/rsilvagit/job-searcher/internal/scoring"
	"github.com/rsilvagit/job-searcher/internal/scraper"
)

var searchFlagKeys = map[string]string{
	"query":        "search_terms",
	"location":     "locations",
	"max-results":  "output.max_results",
	"metrics-file": "metrics_file",
	"min-score":    "filters.min_score",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one search across all enabled providers",
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindFlags(cmd, searchFlagKeys)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := newSearcher(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSearchFlags(runCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("query", "q", nil, "search terms, overrides search_terms (ex: \"golang developer\")")
	cmd.Flags().StringSliceP("location", "l", nil, "locations, overrides locations (ex: \"Remote\")")
	cmd.Flags().Int("max-results", 0, "maximum number of postings in the output, 0 keeps the config value")
	cmd.Flags().Float64("min-score", 0, "drop postings scoring below this value")
	cmd.Flags().String("metrics-file", "", "write run metrics to this file in the textfile-collector format")
	cmd.Flags().Bool("no-save", false, "do not write result files")
	cmd.Flags().Bool("quiet", false, "do not print the results table")
}

// searcher runs searches with one loaded configuration.
type searcher struct {
	cfg      *config.Config
	log      *zap.Logger
	datasets map[string]scraper.Dataset
	rdb      *redis.Client

	noSave bool
	quiet  bool
}

func newSearcher(ctx context.Context, cmd *cobra.Command) (*searcher, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	datasets, err := scraper.LoadDatasets()
	if err != nil {
		return nil, fmt.Errorf("loading static datasets: %w", err)
	}

	s := &searcher{cfg: cfg, log: log, datasets: datasets}
	s.noSave, _ = cmd.Flags().GetBool("no-save")
	s.quiet, _ = cmd.Flags().GetBool("quiet")

	if url := cfg.Transport.RedisURL; url != "" {
		rdb, err := pacer.Dial(ctx, url)
		if err != nil {
			// pacing degrades to per-process spacing
			log.Warn("redis unavailable, pacing locally", zap.Error(err))
		} else {
			s.rdb = rdb
		}
	}

	log.Info("starting the job-searcher",
		zap.String("version", version),
		zap.String("config", viper.ConfigFileUsed()),
		zap.Bool("shared_pacing", s.rdb != nil),
	)
	return s, nil
}

// Run performs one search and hands the report to every writer.
// Every call builds fresh providers so nothing carries over between runs.
func (s *searcher) Run(ctx context.Context) error {
	providers, err := s.cfg.BuildProviders(s.log, s.datasets, s.rdb)
	if err != nil {
		return fmt.Errorf("building providers: %w", err)
	}

	m := metrics.New()
	coord := pipeline.New(scoring.New(s.cfg.Scoring.Weights, s.log), s.log, m)

	q := s.cfg.Query()
	res, err := coord.Run(ctx, providers, pipeline.Options{
		Query:      q,
		Criteria:   s.cfg.Criteria(),
		Filters:    s.cfg.FilterOptions(),
		MaxResults: s.cfg.Output.MaxResults,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	report := output.FromResult(res, q)
	writers, err := s.writers()
	if err != nil {
		return err
	}
	for _, w := range writers {
		if err := w.WriteReport(ctx, report); err != nil {
			// one broken destination must not hide the results from the others
			s.log.Error("writing results", zap.String("writer", fmt.Sprintf("%T", w)), zap.Error(err))
			continue
		}
		if fw, ok := w.(*output.FileWriter); ok {
			s.log.Info("results saved", zap.String("path", fw.Saved))
		}
	}

	if path := s.cfg.MetricsFile; path != "" {
		if err := m.WriteFile(path); err != nil {
			s.log.Error("writing metrics", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

func (s *searcher) writers() ([]output.ResultWriter, error) {
	var writers []output.ResultWriter
	if !s.quiet {
		writers = append(writers, output.NewConsolePrinter())
	}

	if !s.noSave {
		for _, format := range s.cfg.Output.Formats {
			fw, err := output.NewFileWriter(format, s.cfg.Output.Dir)
			if err != nil {
				return nil, err
			}
			writers = append(writers, fw)
		}
	}

	n := s.cfg.Notifications
	if n.TelegramToken != "" && n.TelegramChatID != "" {
		writers = append(writers, output.NewTelegramWriter(n.TelegramToken, n.TelegramChatID))
	}
	if n.DiscordWebhook != "" {
		writers = append(writers, output.NewDiscordWriter(n.DiscordWebhook))
	}
	return writers, nil
}

func (s *searcher) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	_ = s.log.Sync()
}
