// Package jira implements ports.IssueTracker over the Jira Server REST API v2.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"planrecon/internal/application"
	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

const (
	searchFields       = "key,summary,issuetype,status"
	defaultPageSize    = 100
	defaultTimeout     = 30 * time.Second
	defaultParentField = "Parent Link"
	maxErrorBody       = 4 << 10
)

// Config holds the connection settings of a Client
type Config struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	Burst             int
	PageSize          int
	ParentField       string   // JQL field linking children to parents
	ExcludedTypes     []string // issue types left out of child searches
}

// Client talks to Jira with a bearer token
type Client struct {
	base          *url.URL
	token         string
	http          *http.Client
	limiter       *rate.Limiter
	pageSize      int
	parentField   string
	excludedTypes []string
	logger        *slog.Logger
}

var _ ports.IssueTracker = (*Client)(nil)

// NewClient creates a Jira client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := application.ValidateRequired("baseURL", cfg.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid tracker URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &application.ValidationError{Field: "baseURL", Message: "must be an absolute URL"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base:          base,
		token:         cfg.Token,
		http:          &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Inf, 0),
		pageSize:      cfg.PageSize,
		parentField:   cfg.ParentField,
		excludedTypes: cfg.ExcludedTypes,
		logger:        logger.With("component", "jira"),
	}
	if c.http.Timeout <= 0 {
		c.http.Timeout = defaultTimeout
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.parentField == "" {
		c.parentField = defaultParentField
	}
	if c.excludedTypes == nil {
		c.excludedTypes = []string{"Sub-task"}
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

type issueJSON struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		IssueType struct {
			Name    string `json:"name"`
			Subtask bool   `json:"subtask"`
		} `json:"issuetype"`
	} `json:"fields"`
}

func (j issueJSON) issue() domain.Issue {
	return domain.Issue{
		Key:       j.Key,
		Summary:   j.Fields.Summary,
		Status:    j.Fields.Status.Name,
		IssueType: j.Fields.IssueType.Name,
		IsSubtask: j.Fields.IssueType.Subtask,
	}
}

type searchJSON struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []issueJSON `json:"issues"`
}

type errorJSON struct {
	ErrorMessages []string `json:"errorMessages"`
}

// FetchIssue returns a single issue. A missing issue yields an error
// matching application.ErrNotFound.
func (c *Client) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	q := url.Values{"fields": {searchFields}}
	var out issueJSON
	if err := c.get(ctx, "fetch issue", key, "/rest/api/2/issue/"+url.PathEscape(key), q, &out); err != nil {
		return nil, err
	}
	issue := out.issue()
	return &issue, nil
}

// FetchChildren returns the issues whose parent link points at key, within
// key's project, following every result page
func (c *Client) FetchChildren(ctx context.Context, key string) ([]domain.Issue, error) {
	jql := c.childrenJQL(key)

	var issues []domain.Issue
	for startAt := 0; ; {
		q := url.Values{
			"jql":        {jql},
			"fields":     {searchFields},
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(c.pageSize)},
		}

		var page searchJSON
		if err := c.get(ctx, "search children", key, "/rest/api/2/search", q, &page); err != nil {
			return nil, err
		}
		for _, j := range page.Issues {
			issues = append(issues, j.issue())
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	c.logger.Debug("fetched children", "key", key, "count", len(issues))
	return issues, nil
}

func (c *Client) childrenJQL(key string) string {
	jql := fmt.Sprintf("%s = %s AND project = %s", quote(c.parentField), quote(key), quote(application.ProjectOf(key)))
	if len(c.excludedTypes) > 0 {
		quoted := make([]string, len(c.excludedTypes))
		for i, t := range c.excludedTypes {
			quoted[i] = quote(t)
		}
		jql += fmt.Sprintf(" AND issuetype NOT IN (%s)", strings.Join(quoted, ", "))
	}
	return jql
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (c *Client) get(ctx context.Context, op, key, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &application.TrackerError{Op: op, Key: key, Err: err}
	}

	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &application.TrackerError{Op: op, Key: key, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &application.TrackerError{Op: op, Key: key, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("tracker request", "op", op, "key", key, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &application.TrackerError{Op: op, Key: key, StatusCode: resp.StatusCode, Err: statusError(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &application.TrackerError{Op: op, Key: key, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var msg string
	var e errorJSON
	if json.Unmarshal(body, &e) == nil && len(e.ErrorMessages) > 0 {
		msg = strings.Join(e.ErrorMessages, "; ")
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		if msg != "" {
			return fmt.Errorf("%s: %w", msg, application.ErrNotFound)
		}
		return application.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = "check the tracker token"
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.New(msg)
}
