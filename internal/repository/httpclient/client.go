// Package httpclient implements repository.TaskRepository against a remote
// task API speaking JSON over HTTP.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

// DefaultBaseURL is where the reference API listens in development.
const DefaultBaseURL = "https://localhost:7279/api/Task"

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote task API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	mapper  *domain.TaskMapper
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify accepts self-signed certificates, as served by a
// local development API.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		c.http = &http.Client{Transport: transport}
	}
}

// WithBearerToken sends token as an OAuth2 bearer credential on every
// request. Apply it after any option that replaces the HTTP client.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
}

// New creates a client for the collection at baseURL, e.g.
// "https://localhost:7279/api/Task".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		mapper:  domain.NewTaskMapper(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every task.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var body []domain.WireTask
	if err := c.do(ctx, http.MethodGet, "", "fetch tasks", nil, &body); err != nil {
		return nil, err
	}
	tasks, err := c.mapper.FromWireSlice(body)
	if err != nil {
		return nil, errors.NewTransportError("fetch tasks", 0, err)
	}
	return tasks, nil
}

// Get fetches one task.
func (c *Client) Get(ctx context.Context, id string) (domain.Task, error) {
	return c.single(ctx, http.MethodGet, id, "fetch task", nil)
}

// Create posts a new task; the server assigns id and timestamps.
func (c *Client) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	body := c.mapper.DraftToWire("", draft)
	var out domain.WireTask
	if err := c.do(ctx, http.MethodPost, "", "add task", body, &out); err != nil {
		return domain.Task{}, err
	}
	if out.ID == "" {
		return domain.Task{}, errors.NewTransportError("add task", 0, errEmptyBody)
	}
	return c.decodeTask("add task", out)
}

// Update puts the full task body for id.
func (c *Client) Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	return c.single(ctx, http.MethodPut, id, "update task", c.mapper.DraftToWire(id, draft))
}

// Delete removes the task and returns the record the server reports as deleted.
func (c *Client) Delete(ctx context.Context, id string) (domain.Task, error) {
	return c.single(ctx, http.MethodDelete, id, "delete task", nil)
}

var errEmptyBody = stderrors.New("empty response body")

func (c *Client) single(ctx context.Context, method, id, op string, body interface{}) (domain.Task, error) {
	var out domain.WireTask
	err := c.do(ctx, method, "/"+url.PathEscape(id), op, body, &out)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeTransport) && statusOf(err) == http.StatusNotFound {
			return domain.Task{}, errors.NewNotFoundError("task", id)
		}
		return domain.Task{}, err
	}
	if out.ID == "" {
		// some servers answer DELETE with 204 and no record
		if method != http.MethodDelete {
			return domain.Task{}, errors.NewTransportError(op, 0, errEmptyBody)
		}
		out.ID = id
	}
	return c.decodeTask(op, out)
}

func (c *Client) decodeTask(op string, w domain.WireTask) (domain.Task, error) {
	task, err := c.mapper.FromWire(w)
	if err != nil {
		return domain.Task{}, errors.NewTransportError(op, 0, err)
	}
	return task, nil
}

// do sends one request. out may be left untouched when the response has no body.
func (c *Client) do(ctx context.Context, method, path, op string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInvalidInputError("body", body, err.Error())
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewTransportError(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Debugf("httpclient: %s %s\n", method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return errors.NewTimeoutError(op, c.timeout.String())
		}
		return errors.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()
	logging.Debugf("httpclient: %s %s -> %d\n", method, req.URL, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if s := strings.TrimSpace(string(snippet)); s != "" {
			cause = fmt.Errorf("%s", s)
		}
		return errors.NewTransportError(op, resp.StatusCode, cause).WithContext("url", req.URL.String())
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.NewTransportError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusOf(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return 0
	}
	status, _ := appErr.GetContext("status")
	code, _ := status.(int)
	return code
}
