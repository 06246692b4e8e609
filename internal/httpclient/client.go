package httpclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/pacer"
)

const maxBodySize = 10 << 20

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// challengeMarkers identify interstitial bot-check pages served with a 200.
var challengeMarkers = []string{
	"captcha-delivery",
	"cf-chl-",
	"/cdn-cgi/challenge-platform",
	"verify you are human",
	"are you a robot",
	"captcha required",
}

// Options configures the transport policy.
type Options struct {
	ProxyURL    string
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration

	// Pacer overrides the default Local pacer built from MinDelay/MaxDelay.
	Pacer  pacer.Pacer
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = 20 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseBackoff == 0 {
		o.BaseBackoff = 2 * time.Second
	}
	if o.Pacer == nil {
		o.Pacer = pacer.NewLocal(o.MinDelay, o.MaxDelay)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Client performs GET requests under the transport policy: randomized
// pacing, rotating identity, per-attempt timeout and classified retries.
// One Client serves one provider.
type Client struct {
	inner       *http.Client
	pacer       pacer.Pacer
	timeout     time.Duration
	maxAttempts int
	baseBackoff time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client with the given options.
func New(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("httpclient: invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		inner:       &http.Client{Transport: transport},
		pacer:       opts.Pacer,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
		logger:      opts.Logger,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:       pacer.Sleep,
	}, nil
}

// Get fetches rawURL and returns the response body. header values
// override the default browser headers. Failures are always *Error.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &Error{Kind: KindTransient, URL: rawURL, Reason: "invalid URL", Cause: err}
	}

	var last *Error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoff(attempt - 1)
			c.logger.Debug("retrying request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				last.Attempts = attempt - 1
				return nil, last
			}
		}

		if err := c.pacer.Wait(ctx, u.Host); err != nil {
			return nil, &Error{Kind: KindTransient, URL: rawURL, Attempts: attempt - 1, Reason: "pacing interrupted", Cause: err}
		}

		body, err := c.attempt(ctx, rawURL, header)
		if err == nil {
			return body, nil
		}

		last = err
		last.Attempts = attempt
		if last.Kind == KindBlocked {
			c.logger.Warn("target site is blocking requests",
				zap.String("url", rawURL),
				zap.Int("status", last.Status),
				zap.String("reason", last.Reason),
			)
			return nil, last
		}
		if !last.retryable || ctx.Err() != nil {
			return nil, last
		}
	}

	return nil, last
}

func (c *Client) attempt(ctx context.Context, rawURL string, header http.Header) ([]byte, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransient, URL: rawURL, Reason: "building request", Cause: err}
	}
	c.setHeaders(req, header)

	c.logger.Debug("make request", zap.String("url", rawURL), zap.String("user_agent", req.UserAgent()))

	resp, err := c.inner.Do(req)
	if err != nil {
		reason := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		return nil, &Error{Kind: KindTransient, URL: rawURL, Reason: reason, Cause: err, retryable: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindBlocked, URL: rawURL, Status: resp.StatusCode, Reason: "rate limited"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindBlocked, URL: rawURL, Status: resp.StatusCode, Reason: "access denied"}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &Error{Kind: KindTransient, URL: rawURL, Status: resp.StatusCode, Reason: "server error", retryable: true}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: KindTransient, URL: rawURL, Status: resp.StatusCode, Reason: "unexpected status"}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, &Error{Kind: KindTransient, URL: rawURL, Status: resp.StatusCode, Reason: "reading body", Cause: err, retryable: true}
	}

	if marker, ok := challengePage(body); ok {
		return nil, &Error{Kind: KindBlocked, URL: rawURL, Status: resp.StatusCode, Reason: "challenge page: " + marker}
	}

	return body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if !resp.Uncompressed && strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(io.LimitReader(reader, maxBodySize))
}

func challengePage(body []byte) (string, bool) {
	head := body
	if len(head) > 64<<10 {
		head = head[:64<<10]
	}
	lower := bytes.ToLower(head)
	for _, m := range challengeMarkers {
		if bytes.Contains(lower, []byte(m)) {
			return m, true
		}
	}
	return "", false
}

// backoff returns the wait before the given retry (1-based): base, 2*base, 4*base...
func (c *Client) backoff(retry int) time.Duration {
	return c.baseBackoff * time.Duration(1<<uint(retry-1))
}

func (c *Client) userAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return userAgents[c.rnd.Intn(len(userAgents))]
}

func (c *Client) setHeaders(req *http.Request, extra http.Header) {
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// Accept-Encoding is left to http.Transport so compression stays transparent.
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Connection", "keep-alive")

	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}
