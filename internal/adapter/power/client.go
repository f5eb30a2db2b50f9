package power

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-forecast-engine/internal/domain"
	"github.com/couchcryptid/climate-forecast-engine/internal/observability"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Parameters requested from the archive, in the order the API echoes them.
const (
	ParamTempMin  = "T2M_MIN"
	ParamTempMax  = "T2M_MAX"
	ParamPrecip   = "PRECTOTCORR"
	ParamWind     = "WS10M"
	ParamHumidity = "RH2M"
	ParamPressure = "PS"
)

var requestedParams = ParamTempMin + "," + ParamTempMax + "," + ParamPrecip + "," +
	ParamWind + "," + ParamHumidity + "," + ParamPressure

// breakerTripFailures is the run of consecutive failures that opens the circuit.
const breakerTripFailures = 5

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("archive circuit breaker open")
)

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimit      float64 // requests per second; <= 0 disables limiting
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client fetches daily point observations from the NASA POWER API. Every
// call goes to the network; responses are never cached.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client with rate limiting, retries and a
// circuit breaker.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(0, opts.MaxRetries),
		backoff:    opts.InitialBackoff,
		maxBackoff: opts.MaxBackoff,
		metrics:    metrics,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          "nasa-power",
		MaxRequests:   3,
		Interval:      time.Minute,
		Timeout:       30 * time.Second,
		ReadyToTrip:   tripOnConsecutiveFailures,
		OnStateChange: c.onStateChange,
	})
	return c
}

func tripOnConsecutiveFailures(counts gobreaker.Counts) bool {
	return counts.ConsecutiveFailures >= breakerTripFailures
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	c.logger.Warn("archive circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	if to == gobreaker.StateOpen {
		c.metrics.ArchiveCircuitOpen.Set(1)
	} else {
		c.metrics.ArchiveCircuitOpen.Set(0)
	}
}

// FetchDaily returns the observations for [start, end] at a point. A body that
// does not have the expected nested shape yields an empty series and no error.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) (domain.DailySeries, error) {
	u := c.buildURL(lat, lon, start, end)

	t0 := time.Now()
	body, err := c.get(ctx, u)
	c.metrics.ArchiveAPIDuration.Observe(time.Since(t0).Seconds())
	if err != nil {
		c.metrics.ArchiveRequests.WithLabelValues("error").Inc()
		return domain.DailySeries{}, err
	}

	series, err := ParseDaily(body)
	if err != nil {
		c.metrics.ArchiveRequests.WithLabelValues("malformed").Inc()
		c.logger.Warn("archive response has unexpected shape",
			"lat", lat, "lon", lon,
			"start", start.Format(dateLayout), "end", end.Format(dateLayout),
			"error", err,
		)
		return domain.DailySeries{}, nil
	}

	if series.Empty() {
		c.metrics.ArchiveRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.ArchiveRequests.WithLabelValues("success").Inc()
	}
	return series, nil
}

func (c *Client) buildURL(lat, lon float64, start, end time.Time) string {
	params := url.Values{
		"parameters": {requestedParams},
		"community":  {"RE"},
		"longitude":  {strconv.FormatFloat(lon, 'f', 4, 64)},
		"latitude":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"start":      {start.Format(dateLayout)},
		"end":        {end.Format(dateLayout)},
		"format":     {"JSON"},
	}
	return c.baseURL + "?" + params.Encode()
}

// get issues the request through the limiter and breaker, retrying 429, 5xx
// and transport errors with exponential backoff.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("archive rate limiter: %w", err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.do(ctx, u)
		})
		if err == nil {
			return result.([]byte), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if ctx.Err() != nil || !retryable(err) || attempt >= c.maxRetries {
			return nil, err
		}

		c.metrics.ArchiveRetries.Inc()
		delay := c.backoff * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.maxBackoff {
			delay = c.maxBackoff
		}
		c.logger.Debug("retrying archive request", "attempt", attempt+1, "delay", delay, "error", err)
		if !sleepWithContext(ctx, delay) {
			return nil, ctx.Err()
		}
	}
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", errUnexpected, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive response: %w", err)
	}
	return body, nil
}

// retryable reports whether an attempt may succeed if repeated. Client errors
// other than 429 are final.
func retryable(err error) bool {
	return !errors.Is(err, errUnexpected)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
