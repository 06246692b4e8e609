package scraper

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/rsilvagit/job-searcher/internal/httpclient"
)

const (
	minBodyLen      = 50
	sampleLen       = 4096
	maxGarbledRatio = 0.10
)

// wallMarkers identify login walls and verification pages. Sites serve
// them with a 200 and their usual chrome, so they never look corrupted.
var wallMarkers = []string{
	"authwall",
	"auth-wall",
	"login-wall",
	"additional verification required",
	"sign in to see",
	"sign in to view",
}

// CheckContent rejects response bodies that cannot be a real listing page:
// near-empty bodies, a high share of non-printable or replacement runes,
// a login or verification wall, or none of the expected structural
// markers. Such responses are hostile and fail with a Blocked error
// instead of parsing to zero postings.
func CheckContent(rawURL string, body []byte, markers ...string) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) < minBodyLen {
		return httpclient.Blocked(rawURL, fmt.Sprintf("body too short (%d bytes)", len(trimmed)))
	}

	if ratio := garbledRatio(trimmed); ratio > maxGarbledRatio {
		return httpclient.Blocked(rawURL, fmt.Sprintf("garbled content (%.0f%% unreadable)", ratio*100))
	}

	lower := bytes.ToLower(trimmed)
	for _, m := range wallMarkers {
		if bytes.Contains(lower, []byte(m)) {
			return httpclient.Blocked(rawURL, "login wall: "+m)
		}
	}

	if len(markers) == 0 {
		return nil
	}
	for _, m := range markers {
		if bytes.Contains(lower, bytes.ToLower([]byte(m))) {
			return nil
		}
	}
	return httpclient.Blocked(rawURL, "no expected structural markers")
}

func garbledRatio(body []byte) float64 {
	if len(body) > sampleLen {
		body = body[:sampleLen]
	}

	var total, bad int
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		body = body[size:]
		// a rune cut at the sample boundary is not evidence of corruption
		if r == utf8.RuneError && size == 1 && len(body) == 0 {
			break
		}
		total++
		switch {
		case r == utf8.RuneError:
			bad++
		case unicode.IsPrint(r), unicode.IsSpace(r):
		default:
			bad++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(bad) / float64(total)
}
