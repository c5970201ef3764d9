package github

import (
	"context"
	json "encoding/json/v2"
	"io"
	"net/http"
	"time"
)

const (
	// lowWaterMark is the remaining-request threshold below which a run
	// pauses until the quota window resets
	lowWaterMark = 10

	// resetMargin pads the reset timestamp so we do not resume a hair
	// before GitHub actually refills the quota
	resetMargin = 5 * time.Second
)

// RateLimitState is a snapshot of the core API quota
type RateLimitState struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// observeRate folds X-RateLimit-* response headers into the cached state.
// Responses without the headers (proxies, error pages) leave the cache alone
func (c *Client) observeRate(limit, remaining int, reset time.Time, h http.Header) {
	if h.Get("X-RateLimit-Remaining") == "" {
		return
	}
	c.rateMu.Lock()
	c.rate = &RateLimitState{Limit: limit, Remaining: remaining, Reset: reset}
	c.rateMu.Unlock()
}

// cachedRate returns a copy of the cached state, or false when unknown
func (c *Client) cachedRate() (RateLimitState, bool) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	if c.rate == nil {
		return RateLimitState{}, false
	}
	return *c.rate, true
}

// dropRate clears the cached state so the next check refetches
func (c *Client) dropRate() {
	c.rateMu.Lock()
	c.rate = nil
	c.rateMu.Unlock()
}

// RateLimit returns the current quota state, from cache when available,
// otherwise via GET /rate_limit. A failed fetch logs and falls back to the
// conservative unauthenticated estimate rather than failing the run
func (c *Client) RateLimit(ctx context.Context) RateLimitState {
	if st, ok := c.cachedRate(); ok {
		return st
	}
	st, err := c.fetchRateLimit(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("rate limit query failed, assuming unauthenticated quota")
		return RateLimitState{Limit: 60, Remaining: 60, Reset: c.now().Add(time.Hour)}
	}
	c.rateMu.Lock()
	c.rate = &st
	c.rateMu.Unlock()
	return st
}

func (c *Client) fetchRateLimit(ctx context.Context) (RateLimitState, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/rate_limit")
	if err != nil {
		return RateLimitState{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("github close body failed")
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return RateLimitState{}, &GHStatusError{Status: resp.StatusCode}
	}
	var out struct {
		Rate struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"rate"`
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return RateLimitState{}, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return RateLimitState{}, err
	}
	return RateLimitState{
		Limit:     out.Rate.Limit,
		Remaining: out.Rate.Remaining,
		Reset:     time.Unix(out.Rate.Reset, 0).UTC(),
	}, nil
}

// CheckAndHandleRateLimit pauses until the quota window resets when the
// remaining budget dips under the low-water mark. Returns whether it waited.
// The wait is not cancellable once begun
func (c *Client) CheckAndHandleRateLimit(ctx context.Context) bool {
	st := c.RateLimit(ctx)
	if st.Remaining >= lowWaterMark {
		return false
	}
	wait := st.Reset.Sub(c.now()) + resetMargin
	if wait < 0 {
		wait = 0
	}
	c.log.Warn().
		Int("remaining", st.Remaining).
		Time("reset", st.Reset).
		Dur("wait", wait).
		Msg("rate limit nearly exhausted, pausing until reset")
	c.sleep(wait)
	c.dropRate()
	return true
}
