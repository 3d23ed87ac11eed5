package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/swiss-league/internal/platform/cache"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/riskibarqy/swiss-league/internal/platform/resilience"
	"github.com/riskibarqy/swiss-league/internal/usecase"
)

var errDirectoryTransient = crerr.New("member directory transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client looks members up in the club membership service. Answers, including
// misses, are cached for CacheTTL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	cache      *cache.Store[lookup]
}

type lookup struct {
	member Member
	found  bool
}

// Member is one entry of the membership list.
type Member struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type memberEnvelope struct {
	Data Member `json:"data"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 3 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		cache:      cache.NewStore[lookup](ttl),
	}
}

func (c *Client) ResolveDisplayName(ctx context.Context, displayName string) (string, bool, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "", false, nil
	}

	endpoint := c.baseURL + "/v1/members?" + url.Values{"display_name": []string{displayName}}.Encode()
	found, err := c.cache.GetOrLoad(ctx, "display:"+strings.ToLower(displayName), func(ctx context.Context) (lookup, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return "", false, err
	}
	if !found.found || found.member.Username == "" {
		return "", false, nil
	}
	return found.member.Username, true, nil
}

func (c *Client) DisplayName(ctx context.Context, username string) (string, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", false, nil
	}

	endpoint := c.baseURL + "/v1/members/" + url.PathEscape(username)
	found, err := c.cache.GetOrLoad(ctx, "username:"+strings.ToLower(username), func(ctx context.Context) (lookup, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return "", false, err
	}
	if !found.found || found.member.DisplayName == "" {
		return "", false, nil
	}
	return found.member.DisplayName, true, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (lookup, error) {
	var out lookup
	err := c.breaker.Execute(func() error {
		var err error
		out, err = c.get(ctx, endpoint)
		return err
	}, isCircuitFailure)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "member directory circuit breaker rejected request", "state", c.breaker.State())
		return lookup{}, fmt.Errorf("%w: member directory is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "member directory request failed", "url", endpoint, "error", err)
		return lookup{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (lookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookup{}, crerr.Wrap(err, "build member directory request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookup{}, crerr.Mark(crerr.Wrap(err, "request member directory"), errDirectoryTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return lookup{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return lookup{}, crerr.Mark(crerr.Wrap(err, "read member directory response"), errDirectoryTransient)
	}
	if resp.StatusCode != http.StatusOK {
		err := crerr.Newf("member directory status=%d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			err = crerr.Mark(err, errDirectoryTransient)
		}
		return lookup{}, err
	}

	var decoded memberEnvelope
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return lookup{}, crerr.Wrap(err, "decode member directory response")
	}
	return lookup{member: decoded.Data, found: true}, nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errDirectoryTransient)
}
