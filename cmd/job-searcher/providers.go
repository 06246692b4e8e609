package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsilvagit/job-searcher/internal/scraper"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the configured providers and their adapter chains",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		datasets, err := scraper.LoadDatasets()
		if err != nil {
			return fmt.Errorf("loading static datasets: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tENABLED\tCHAIN")
		for _, p := range cfg.Providers {
			chain := append([]string{}, p.Chain...)
			if p.Static != "" {
				chain = append(chain, scraper.StaticPrefix+p.Static)
			} else {
				chain = append(chain, "(no static dataset)")
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", p.Name, p.Enabled, strings.Join(chain, " -> "))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nlive adapters: %s\n", strings.Join(scraper.LiveKinds(), ", "))
		fmt.Printf("static datasets: %s\n", strings.Join(scraper.DatasetNames(datasets), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
