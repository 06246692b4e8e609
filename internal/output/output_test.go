package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/job-searcher/internal/fallback"
	"github.com/rsilvagit/job-searcher/internal/model"
	"github.com/rsilvagit/job-searcher/internal/pipeline"
)

var generated = time.Date(2025, 5, 6, 14, 30, 0, 0, time.UTC)

func sampleReport() Report {
	return Report{
		RunID:     "run-1",
		Generated: generated,
		Terms:     []string{"unity developer"},
		Providers: []ProviderStatus{
			{Provider: "remote", Status: model.StatusLive, Adapter: "remoteok", Count: 1},
			{Provider: "games", Status: model.StatusStatic, Adapter: "static:gamedev", Count: 1},
		},
		Jobs: []model.Job{
			model.Job{Title: "Unity Developer", Company: "GameStudio Pro", Location: "Remote", Salary: "$70,000 - $95,000",
				Description: "Unity, C#", URL: "https://gamedevjobs.com/unity-mobile-1", Source: "games"}.WithScore(35),
			model.Job{Title: "Go | Backend", Company: "Acme", Location: "Remote",
				URL: "https://remoteok.com/remote-jobs/1", Source: "remote"}.WithScore(10),
		},
	}
}

func TestFromResult(t *testing.T) {
	id := uuid.New()
	res := &pipeline.Result{
		RunID:    id,
		Finished: generated,
		Jobs:     []model.Job{{Title: "a"}},
		Reports: []pipeline.ProviderReport{
			{Provider: "ok", Status: model.StatusFallback, Adapter: "remotegamejobs", Count: 1},
			{Provider: "bad", Status: model.StatusEmpty, Err: &fallback.ConfigError{Provider: "bad", Reason: "no static adapter"}},
		},
	}

	r := FromResult(res, model.Query{Terms: []string{"go"}})

	assert.Equal(t, id.String(), r.RunID)
	assert.Equal(t, generated, r.Generated)
	assert.Equal(t, []string{"go"}, r.Terms)
	require.Len(t, r.Providers, 2)
	assert.Empty(t, r.Providers[0].Error)
	assert.Contains(t, r.Providers[1].Error, "no static adapter")
}

func TestConsolePrinter(t *testing.T) {
	var buf bytes.Buffer
	cp := &ConsolePrinter{out: &buf}

	require.NoError(t, cp.WriteReport(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "SCORE")
	assert.Contains(t, out, "Unity Developer")
	assert.Contains(t, out, "static:gamedev")
	assert.Less(t, strings.Index(out, "Unity Developer"), strings.Index(out, "Go | Backend"))
}

func TestConsolePrinter_Empty(t *testing.T) {
	var buf bytes.Buffer
	cp := &ConsolePrinter{out: &buf}

	require.NoError(t, cp.WriteReport(context.Background(), Report{}))
	assert.Contains(t, buf.String(), "No jobs found.")
}

func TestNewFileWriter_UnknownFormat(t *testing.T) {
	_, err := NewFileWriter("pdf", t.TempDir())
	assert.Error(t, err)
}

func TestFileWriter_JSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	fw, err := NewFileWriter("json", dir)
	require.NoError(t, err)

	require.NoError(t, fw.WriteReport(context.Background(), sampleReport()))
	assert.Equal(t, filepath.Join(dir, "jobs_20250506_143000.json"), fw.Saved)

	raw, err := os.ReadFile(fw.Saved)
	require.NoError(t, err)

	var decoded struct {
		RunID string `json:"run_id"`
		Jobs  []struct {
			Title string  `json:"title"`
			Score float64 `json:"relevance_score"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Jobs, 2)
	assert.Equal(t, 35.0, decoded.Jobs[0].Score)
}

func TestFileWriter_CSV(t *testing.T) {
	fw, err := NewFileWriter("CSV", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fw.WriteReport(context.Background(), sampleReport()))

	f, err := os.Open(fw.Saved)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Unity Developer", rows[1][0])
	assert.Equal(t, "35", rows[1][4])
}

func TestFileWriter_Markdown(t *testing.T) {
	fw, err := NewFileWriter("md", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fw.WriteReport(context.Background(), sampleReport()))
	assert.True(t, strings.HasSuffix(fw.Saved, ".md"))

	raw, err := os.ReadFile(fw.Saved)
	require.NoError(t, err)
	md := string(raw)
	assert.Contains(t, md, "### 1. Unity Developer")
	assert.Contains(t, md, "**Relevance:** 35/100")
	assert.Contains(t, md, "| games | static | static:gamedev | 1 |")
}

func TestFileWriter_HTML(t *testing.T) {
	r := sampleReport()
	r.Jobs = append(r.Jobs, model.Job{
		Title:       `<script>alert(1)</script> Engineer`,
		Description: strings.Repeat("d", 250),
		URL:         "javascript:alert(1)",
		Source:      "remote",
	}.WithScore(7.5))

	fw, err := NewFileWriter("HTML", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fw.WriteReport(context.Background(), r))
	assert.True(t, strings.HasSuffix(fw.Saved, "jobs_20250506_143000.html"))

	raw, err := os.ReadFile(fw.Saved)
	require.NoError(t, err)
	page := string(raw)
	assert.Contains(t, page, "<title>Job Search Results</title>")
	assert.Contains(t, page, "Total jobs found: 3")
	assert.Contains(t, page, `<div class="title">Unity Developer</div>`)
	assert.Contains(t, page, "Score: 35.0")
	assert.Contains(t, page, "Score: 7.5")
	assert.Contains(t, page, `<a href="https://gamedevjobs.com/unity-mobile-1" target="_blank" rel="noopener">View Job</a>`)
	assert.Contains(t, page, "<td>games</td><td>static</td><td>static:gamedev</td><td>1</td>")
	assert.Contains(t, page, strings.Repeat("d", 200)+"...")
	assert.NotContains(t, page, strings.Repeat("d", 201))

	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "&lt;script&gt;alert(1)&lt;/script&gt; Engineer")
	assert.NotContains(t, page, `href="javascript:`)
}

func TestFileWriter_HTMLWithoutJobs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeHTML(&buf, Report{RunID: "run-2", Generated: generated}))
	assert.Contains(t, buf.String(), "No jobs found.")
	assert.Contains(t, buf.String(), "Total jobs found: 0")
}

type recordedRequest struct {
	path string
	body map[string]any
}

func recorder(t *testing.T, status int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{path: r.URL.Path, body: body})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"description":"Bad Request: chat not found","message":"Unknown Webhook"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestTelegramWriter(t *testing.T) {
	srv, requests := recorder(t, http.StatusOK)
	tw := NewTelegramWriter("TOKEN", "42")
	tw.apiBase = srv.URL

	require.NoError(t, tw.WriteReport(context.Background(), sampleReport()))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/botTOKEN/sendMessage", reqs[0].path)
	assert.Equal(t, "42", reqs[0].body["chat_id"])
	assert.Equal(t, "MarkdownV2", reqs[0].body["parse_mode"])
	assert.Contains(t, reqs[0].body["text"], "Unity Developer")
	assert.Contains(t, reqs[0].body["text"], "Go \\| Backend")
}

func TestTelegramWriter_SplitsLongReports(t *testing.T) {
	srv, requests := recorder(t, http.StatusOK)
	tw := NewTelegramWriter("T", "1")
	tw.apiBase = srv.URL

	r := Report{}
	for i := 0; i < 60; i++ {
		r.Jobs = append(r.Jobs, model.Job{Title: strings.Repeat("Senior Engineer ", 4), Company: "Acme", URL: "https://x/y"})
	}
	require.NoError(t, tw.WriteReport(context.Background(), r))

	reqs := requests()
	assert.Greater(t, len(reqs), 1)
	for _, req := range reqs {
		assert.LessOrEqual(t, len(req.body["text"].(string)), 4096)
	}
}

func TestTelegramWriter_APIError(t *testing.T) {
	srv, _ := recorder(t, http.StatusBadRequest)
	tw := NewTelegramWriter("T", "1")
	tw.apiBase = srv.URL

	err := tw.WriteReport(context.Background(), Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestDiscordWriter(t *testing.T) {
	srv, requests := recorder(t, http.StatusNoContent)
	dw := NewDiscordWriter(srv.URL + "/webhook")

	require.NoError(t, dw.WriteReport(context.Background(), sampleReport()))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].body["content"], "Unity Developer** (score 35)")
}

func TestDiscordWriter_APIError(t *testing.T) {
	srv, _ := recorder(t, http.StatusNotFound)
	dw := NewDiscordWriter(srv.URL)

	err := dw.WriteReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown Webhook")
}

func TestWriters_RespectContext(t *testing.T) {
	srv, _ := recorder(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDiscordWriter(srv.URL).WriteReport(ctx, sampleReport())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestChunkMessages(t *testing.T) {
	msgs := chunkMessages("head\n", []string{"aaaa", "bbbb", "cccc"}, 10)

	assert.Equal(t, []string{"head\naaaa", "bbbbcccc"}, msgs)
}

func TestChunkMessages_OversizedEntryStandsAlone(t *testing.T) {
	msgs := chunkMessages("", []string{"ab", strings.Repeat("x", 20), "cd"}, 10)

	require.Len(t, msgs, 3)
	assert.Equal(t, strings.Repeat("x", 20), msgs[1])
}

func TestStatusLine(t *testing.T) {
	s := statusLine([]ProviderStatus{
		{Status: model.StatusStatic},
		{Status: model.StatusLive},
		{Status: model.StatusLive},
	})

	assert.Equal(t, "live 2, static 1", s)
	assert.Empty(t, statusLine(nil))
}

func TestDiscordWriter_HeaderSummarizesProviders(t *testing.T) {
	srv, requests := recorder(t, http.StatusNoContent)

	require.NoError(t, NewDiscordWriter(srv.URL).WriteReport(context.Background(), sampleReport()))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].body["content"], "*live 1, static 1*")
}
