package output

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// discordLimit stays under the webhook's 2000 characters per message.
const discordLimit = 1900

// DiscordWriter posts a report to a Discord channel webhook.
type DiscordWriter struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordWriter(webhookURL string) *DiscordWriter {
	return &DiscordWriter{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

func (dw *DiscordWriter) WriteReport(ctx context.Context, r Report) error {
	if len(r.Jobs) == 0 {
		return dw.send(ctx, "No jobs found.")
	}

	header := fmt.Sprintf("**Found %d job(s)**\n", len(r.Jobs))
	if s := statusLine(r.Providers); s != "" {
		header += "*" + s + "*\n"
	}
	header += "\n"

	entries := make([]string, len(r.Jobs))
	for i, j := range r.Jobs {
		entries[i] = discordEntry(i+1, j)
	}

	for _, msg := range chunkMessages(header, entries, discordLimit) {
		if err := dw.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func discordEntry(n int, j model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d. %s** (score %.0f)\n", n, j.Title, j.Score)
	fmt.Fprintf(&b, "> %s | %s\n", j.Company, dash(j.Location))
	if j.Salary != "" {
		fmt.Fprintf(&b, "> Salary: %s\n", j.Salary)
	}
	fmt.Fprintf(&b, "> via %s", j.Source)
	if j.URL != "" {
		fmt.Fprintf(&b, " | <%s>", j.URL)
	}
	b.WriteString("\n\n")
	return b.String()
}

func (dw *DiscordWriter) send(ctx context.Context, text string) error {
	return postJSON(ctx, dw.client, "discord", dw.webhookURL, map[string]string{"content": text}, "message")
}
