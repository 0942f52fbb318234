package telegram

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/netutil"
)

// ClientOptions tunes the Bot API client. Zero values select defaults; Retries < 0 disables retrying.
type ClientOptions struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	// Base replaces the pooled transport, for tests.
	Base http.RoundTripper
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	switch {
	case o.Retries == 0:
		o.Retries = 3
	case o.Retries < 0:
		o.Retries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = 2 * time.Second
	}
	if o.Base == nil {
		o.Base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          64,
			MaxIdleConnsPerHost:   16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}
	return o
}

// BuildHTTPClient returns a Bot API client that retries transient dial and timeout failures.
func BuildHTTPClient(opts ClientOptions) *http.Client {
	opts = opts.withDefaults()
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &retryTransport{
			base:    opts.Base,
			retries: opts.Retries,
			backoff: opts.Backoff,
		},
	}
}

// retryTransport replays a request only when its body can be rebuilt.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	// The last path element is the Bot API method; the token segment never reaches logs.
	method := path.Base(req.URL.Path)

	var lastErr error
	for attempt := 0; ; attempt++ {
		next := req
		if attempt > 0 {
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			next = req.Clone(ctx)
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				next.Body = body
			}
		}

		resp, err := t.base.RoundTrip(next)
		if err == nil {
			return resp, nil
		}
		if attempt >= t.retries || !netutil.ShouldRetry(err) {
			return nil, err
		}
		lastErr = err

		delay := t.backoff * time.Duration(attempt+1)
		logger.Debug(ctx, logger.CompWire, "api.retry",
			slog.String("method", method),
			slog.Int("attempt", attempt+1),
			slog.String("err_kind", netutil.Classify(err)),
			slog.String("err", netutil.Redact(err)),
			slog.Duration("backoff", delay),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
