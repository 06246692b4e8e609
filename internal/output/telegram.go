package output

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// telegramLimit stays under the Bot API's 4096 characters per message.
const telegramLimit = 3800

var markdownV2 = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

// TelegramWriter sends a report to a Telegram chat through the Bot API.
type TelegramWriter struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

func NewTelegramWriter(token, chatID string) *TelegramWriter {
	return &TelegramWriter{
		token:   token,
		chatID:  chatID,
		apiBase: "https://api.telegram.org",
		client:  &http.Client{},
	}
}

func (tw *TelegramWriter) WriteReport(ctx context.Context, r Report) error {
	if len(r.Jobs) == 0 {
		return tw.send(ctx, "No jobs found\\.")
	}

	header := fmt.Sprintf("*Found %d job\\(s\\)*\n", len(r.Jobs))
	if s := statusLine(r.Providers); s != "" {
		header += "_" + escapeMarkdown(s) + "_\n"
	}
	header += "\n"

	entries := make([]string, len(r.Jobs))
	for i, j := range r.Jobs {
		entries[i] = telegramEntry(i+1, j)
	}

	for _, msg := range chunkMessages(header, entries, telegramLimit) {
		if err := tw.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func telegramEntry(n int, j model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\\. %s*\n", n, escapeMarkdown(j.Title))
	fmt.Fprintf(&b, "%s \\| %s\n", escapeMarkdown(j.Company), escapeMarkdown(dash(j.Location)))
	if j.Salary != "" {
		fmt.Fprintf(&b, "Salary: %s\n", escapeMarkdown(j.Salary))
	}
	fmt.Fprintf(&b, "Score %s via %s\n", escapeMarkdown(fmt.Sprintf("%.0f", j.Score)), escapeMarkdown(j.Source))
	if j.URL != "" {
		fmt.Fprintf(&b, "[Open](%s)\n", j.URL)
	}
	b.WriteString("\n")
	return b.String()
}

func escapeMarkdown(s string) string {
	return markdownV2.Replace(s)
}

func (tw *TelegramWriter) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", tw.apiBase, tw.token)
	payload := map[string]string{
		"chat_id":    tw.chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	}
	return postJSON(ctx, tw.client, "telegram", url, payload, "description")
}
