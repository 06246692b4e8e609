package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File formats accepted by NewFileWriter.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var extensions = map[string]string{
	FormatJSON:     "json",
	FormatCSV:      "csv",
	FormatMarkdown: "md",
	FormatHTML:     "html",
}

// Formats lists the supported file formats.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}
}

// FileWriter saves a report as jobs_<timestamp>.<ext> under dir.
type FileWriter struct {
	format string
	dir    string
	encode func(io.Writer, Report) error

	// Saved is the path of the last written file.
	Saved string
}

func NewFileWriter(format, dir string) (*FileWriter, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	fw := &FileWriter{format: format, dir: dir}

	switch format {
	case FormatJSON:
		fw.encode = encodeJSON
	case FormatCSV:
		fw.encode = encodeCSV
	case FormatMarkdown, "md":
		fw.format = FormatMarkdown
		fw.encode = encodeMarkdown
	case FormatHTML:
		fw.encode = encodeHTML
	default:
		return nil, fmt.Errorf("unknown output format %q (available: %s)", format, strings.Join(Formats(), ", "))
	}
	return fw, nil
}

// Path returns the file a report generated at t is written to.
func (fw *FileWriter) Path(t time.Time) string {
	name := fmt.Sprintf("jobs_%s.%s", t.Format("20060102_150405"), extensions[fw.format])
	return filepath.Join(fw.dir, name)
}

func (fw *FileWriter) WriteReport(_ context.Context, r Report) error {
	if fw.dir != "" {
		if err := os.MkdirAll(fw.dir, 0o755); err != nil {
			return fmt.Errorf("%s: creating output dir: %w", fw.format, err)
		}
	}

	path := fw.Path(r.Generated)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: creating file: %w", fw.format, err)
	}

	if err := fw.encode(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%s: writing %s: %w", fw.format, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: closing %s: %w", fw.format, path, err)
	}

	fw.Saved = path
	return nil
}

func encodeJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var csvHeader = []string{"title", "company", "location", "salary", "relevance_score", "source", "date_posted", "url", "description"}

func encodeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, j := range r.Jobs {
		row := []string{
			j.Title, j.Company, j.Location, j.Salary,
			strconv.FormatFloat(j.Score, 'f', -1, 64),
			j.Source, j.DatePosted, j.URL, j.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeMarkdown(w io.Writer, r Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Job search results\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.Generated.Format(time.RFC3339))
	if len(r.Terms) > 0 {
		fmt.Fprintf(&b, "- Search terms: %s\n", strings.Join(r.Terms, ", "))
	}
	fmt.Fprintf(&b, "- Jobs: %d\n\n", len(r.Jobs))

	b.WriteString("## Providers\n\n| Provider | Status | Adapter | Count |\n|---|---|---|---|\n")
	for _, p := range r.Providers {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", mdCell(p.Provider), p.Status, mdCell(dash(p.Adapter)), p.Count)
	}

	b.WriteString("\n## Jobs\n")
	if len(r.Jobs) == 0 {
		b.WriteString("\nNo jobs found.\n")
	}
	for i, j := range r.Jobs {
		fmt.Fprintf(&b, "\n### %d. %s\n\n", i+1, j.Title)
		fmt.Fprintf(&b, "- **Company:** %s\n", dash(j.Company))
		fmt.Fprintf(&b, "- **Location:** %s\n", dash(j.Location))
		fmt.Fprintf(&b, "- **Salary:** %s\n", dash(j.Salary))
		fmt.Fprintf(&b, "- **Relevance:** %.0f/100\n", j.Score)
		fmt.Fprintf(&b, "- **Source:** %s\n", j.Source)
		if j.DatePosted != "" {
			fmt.Fprintf(&b, "- **Posted:** %s\n", j.DatePosted)
		}
		if j.URL != "" {
			fmt.Fprintf(&b, "- **Link:** <%s>\n", j.URL)
		}
		if j.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", j.Description)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
