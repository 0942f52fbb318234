package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var errDialRefused = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

func okResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"ok":true}`))}
}

func TestRetryTransportReplaysBody(t *testing.T) {
	var bodies []string
	client := BuildHTTPClient(ClientOptions{
		Backoff: time.Millisecond,
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if len(bodies) < 3 {
				return nil, errDialRefused
			}
			return okResponse(), nil
		}),
	})

	resp, err := client.Post("https://api.telegram.org/bot1:abc/sendMessage", "application/json", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, []string{`{"text":"hi"}`, `{"text":"hi"}`, `{"text":"hi"}`}, bodies)
}

func TestRetryTransportGivesUp(t *testing.T) {
	calls := 0
	client := BuildHTTPClient(ClientOptions{
		Retries: 2,
		Backoff: time.Millisecond,
		Base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errDialRefused
		}),
	})

	_, err := client.Get("https://api.telegram.org/bot1:abc/getMe")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryTransportSkipsPermanentErrors(t *testing.T) {
	calls := 0
	client := BuildHTTPClient(ClientOptions{
		Backoff: time.Millisecond,
		Base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("certificate is not trusted")
		}),
	})

	_, err := client.Get("https://api.telegram.org/bot1:abc/getMe")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryTransportDisabled(t *testing.T) {
	calls := 0
	client := BuildHTTPClient(ClientOptions{
		Retries: -1,
		Base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errDialRefused
		}),
	})

	_, err := client.Get("https://api.telegram.org/bot1:abc/getMe")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
