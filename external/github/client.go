package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/riskibarqy/swiss-league/internal/platform/resilience"
	"github.com/riskibarqy/swiss-league/internal/usecase"
)

const (
	defaultAPIURL   = "https://api.github.com"
	apiVersion      = "2022-11-28"
	maxBodyBytes    = 8 << 20
	maxErrorSnippet = 300
)

var (
	errGitHubTransient = crerr.New("github transient failure")
	// ErrFileNotFound reports a path that does not exist on the branch yet.
	ErrFileNotFound = crerr.New("github file not found")
	// ErrStaleSHA reports a write against a blob sha that is no longer current.
	ErrStaleSHA = crerr.New("github file sha is stale")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	APIURL         string
	Token          string
	Repo           string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the repository contents API for one owner/name repository.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	owner      string
	repo       string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

// File is a decoded blob together with the sha GitHub uses as its version.
type File struct {
	Path    string
	SHA     string
	Content []byte
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	owner, repo, ok := strings.Cut(strings.TrimSpace(cfg.Repo), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("github repo must look like owner/name, got %q", cfg.Repo)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     apiURL,
		token:      strings.TrimSpace(cfg.Token),
		owner:      owner,
		repo:       repo,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

// GetFile reads path at branch. An empty branch means the default branch.
func (c *Client) GetFile(ctx context.Context, path, branch string) (File, error) {
	endpoint := c.contentsURL(path)
	if branch != "" {
		endpoint += "?" + url.Values{"ref": []string{branch}}.Encode()
	}

	var payload contentResponse
	err := c.guard(ctx, func() error {
		raw, status, err := c.doWithRetry(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			return ErrFileNotFound
		}
		if status != http.StatusOK {
			return statusError(status, raw)
		}
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			return crerr.Wrap(err, "decode github contents payload")
		}
		return nil
	})
	if err != nil {
		return File{}, err
	}

	if payload.Encoding != "" && payload.Encoding != "base64" {
		return File{}, crerr.Newf("unsupported github content encoding %q for %s", payload.Encoding, path)
	}
	content, err := base64.StdEncoding.DecodeString(stripNewlines(payload.Content))
	if err != nil {
		return File{}, crerr.Wrapf(err, "decode github content for %s", path)
	}

	return File{Path: payload.Path, SHA: payload.SHA, Content: content}, nil
}

// PutFile creates or replaces path. sha must be the current blob sha, or empty
// when the file does not exist yet. It returns the new blob sha.
func (c *Client) PutFile(ctx context.Context, path, branch, sha, message string, content []byte) (string, error) {
	body, err := sonic.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  branch,
	})
	if err != nil {
		return "", crerr.Wrap(err, "encode github put request")
	}

	var payload putResponse
	err = c.guard(ctx, func() error {
		raw, status, err := c.do(ctx, http.MethodPut, c.contentsURL(path), body)
		if err != nil {
			return err
		}
		switch {
		case status == http.StatusOK || status == http.StatusCreated:
		case status == http.StatusConflict, status == http.StatusUnprocessableEntity && sha == "":
			return ErrStaleSHA
		case status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(string(raw)), "sha"):
			return ErrStaleSHA
		default:
			return statusError(status, raw)
		}
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			return crerr.Wrap(err, "decode github put payload")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if payload.Content.SHA == "" {
		return "", crerr.Newf("github put response for %s has no content sha", path)
	}
	return payload.Content.SHA, nil
}

// guard runs fn under the circuit breaker. Only transient failures count against it.
func (c *Client) guard(ctx context.Context, fn func() error) error {
	err := c.breaker.Execute(fn, isCircuitFailure)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "github circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: github is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.do(ctx, method, endpoint, body)
		if err == nil && !isRetryableStatus(status) {
			return raw, status, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = statusError(status, raw)
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, 0, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "github request failed", "method", method, "url", endpoint, "error", lastErr)
	return nil, 0, lastErr
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, crerr.Wrap(err, "build github request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, crerr.Mark(crerr.Wrap(err, "send github request"), errGitHubTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, crerr.Mark(crerr.Wrap(err, "read github response"), errGitHubTransient)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiURL, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
}

type contentResponse struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}
