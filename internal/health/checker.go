// Package health probes the backend's /api/health endpoint. The result is
// informational only: the launcher never changes course based on it.
package health

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// maxBody caps how much of a health response is read.
const maxBody = 64 << 10

// Status is the outcome of one probe.
type Status struct {
	Ready     bool      `json:"ready"`
	Service   string    `json:"service,omitempty"`
	Version   string    `json:"version,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Checker probes a single health URL. Concurrent Check calls share one
// in-flight request.
type Checker struct {
	url    string
	client *http.Client
	clock  clockwork.Clock
	group  singleflight.Group
}

// NewChecker builds a checker for baseURL + path.
func NewChecker(baseURL, path string) *Checker {
	return &Checker{
		url:    strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		client: &http.Client{Timeout: 3 * time.Second},
		clock:  clockwork.NewRealClock(),
	}
}

// URL returns the probed endpoint.
func (c *Checker) URL() string { return c.url }

// Check performs (or joins) one probe.
func (c *Checker) Check(ctx context.Context) Status {
	v, _, _ := c.group.Do(c.url, func() (interface{}, error) {
		return c.probe(ctx), nil
	})
	return v.(Status)
}

func (c *Checker) probe(ctx context.Context) Status {
	st := Status{CheckedAt: c.clock.Now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	resp, err := c.client.Do(req)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		st.Error = fmt.Sprintf("read body: %v", err)
		return st
	}
	if resp.StatusCode != http.StatusOK {
		st.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return st
	}

	var hr healthResponse
	if err := sonic.Unmarshal(body, &hr); err != nil {
		st.Error = fmt.Sprintf("decode body: %v", err)
		return st
	}
	st.Service = hr.Service
	st.Version = hr.Version

	switch strings.ToLower(hr.Status) {
	case "healthy", "ok":
		st.Ready = true
	default:
		st.Error = fmt.Sprintf("backend reports status %q", hr.Status)
	}
	return st
}

// WaitReady polls every interval until the backend is ready or ctx ends.
// The last status seen is always returned.
func (c *Checker) WaitReady(ctx context.Context, clk clockwork.Clock, interval time.Duration) (Status, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for {
		st := c.Check(ctx)
		if st.Ready {
			log.Printf("[Health] Backend ready at %s (%s %s)", c.url, st.Service, st.Version)
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, fmt.Errorf("backend not ready: %w", ctx.Err())
		case <-clk.After(interval):
		}
	}
}
