package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// ConsolePrinter writes jobs as a formatted table followed by the
// provider status summary.
type ConsolePrinter struct {
	out io.Writer
}

func NewConsolePrinter() *ConsolePrinter {
	return &ConsolePrinter{out: os.Stdout}
}

func (cp *ConsolePrinter) WriteReport(_ context.Context, r Report) error {
	w := tabwriter.NewWriter(cp.out, 0, 0, 2, ' ', 0)

	if len(r.Jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
	} else {
		fmt.Fprintln(w, "SCORE\tSOURCE\tTITLE\tCOMPANY\tLOCATION\tSALARY\tURL")
		fmt.Fprintln(w, "-----\t------\t-----\t-------\t--------\t------\t---")
		for _, j := range r.Jobs {
			fmt.Fprintf(w, "%.0f\t%s\t%s\t%s\t%s\t%s\t%s\n",
				j.Score, j.Source, j.Title, j.Company, j.Location, dash(j.Salary), j.URL)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "PROVIDER\tSTATUS\tADAPTER\tCOUNT")
	for _, p := range r.Providers {
		status := string(p.Status)
		if p.Error != "" {
			status += " (" + p.Error + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Provider, status, dash(p.Adapter), p.Count)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
