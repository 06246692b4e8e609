package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rsilvagit/job-searcher/internal/config"
)

const app = "job-searcher"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-searcher aggregates job postings from several job boards and ranks them by relevance",
		// usage is noise for runtime failures
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-searcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	// names used by the .env files of earlier versions
	_ = viper.BindEnv("notifications.telegram_token", config.EnvPrefix+"_NOTIFICATIONS_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	_ = viper.BindEnv("notifications.telegram_chat_id", config.EnvPrefix+"_NOTIFICATIONS_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = viper.BindEnv("notifications.discord_webhook", config.EnvPrefix+"_NOTIFICATIONS_DISCORD_WEBHOOK", "DISCORD_WEBHOOK_URL")
	_ = viper.BindEnv("transport.redis_url", config.EnvPrefix+"_TRANSPORT_REDIS_URL", "REDIS_URL")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}
}

// loadConfig reads the config file and validates the merged configuration.
// Without --config a missing job-searcher.yaml is fine: defaults apply.
func loadConfig() (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return config.Load(viper.GetViper())
}

// bindFlags binds command flags to config keys. It runs in PreRunE because
// several commands share keys and viper keeps only the last binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}
