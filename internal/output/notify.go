package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// chunkMessages packs header and entries into messages of at most limit
// bytes. An entry is never split; an oversized one gets its own message.
func chunkMessages(header string, entries []string, limit int) []string {
	var (
		msgs    []string
		current strings.Builder
	)
	current.WriteString(header)
	for _, e := range entries {
		if current.Len() > 0 && current.Len()+len(e) > limit {
			msgs = append(msgs, current.String())
			current.Reset()
		}
		current.WriteString(e)
	}
	if current.Len() > 0 {
		msgs = append(msgs, current.String())
	}
	return msgs
}

// statusLine summarizes providers as e.g. "live 2, static 1".
func statusLine(providers []ProviderStatus) string {
	counts := make(map[string]int)
	for _, p := range providers {
		counts[string(p.Status)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

// postJSON sends payload to url. On a non-2xx answer the error carries
// the errField value of the JSON response body.
func postJSON(ctx context.Context, client *http.Client, service, url string, payload any, errField string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshaling payload: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: sending message: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var result map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("%s: API error %d: %v", service, resp.StatusCode, result[errField])
	}
	return nil
}
