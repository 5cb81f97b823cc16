// Package googletasks implements repository.TaskRepository on a Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuthClientFile and TokenFile are read from the config directory.
	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"

	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client stores tasks in one Google Tasks list.
type Client struct {
	svc    *tasks.Service
	listID string
	codec  *Codec
}

// New creates a client authorized by the OAuth client and token files in
// configDir. listID "" means the default list.
func New(ctx context.Context, configDir, listID string) (*Client, error) {
	clientJSON, err := os.ReadFile(filepath.Join(configDir, OAuthClientFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(filepath.Join(configDir, TokenFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, listID)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID, codec: NewCodec()}, nil
}

// List returns every task of the list, completed and hidden ones included.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []domain.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				result = append(result, c.codec.Decode(item))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("fetch tasks", "", err)
	}
	logging.Debugf("googletasks: listed %d tasks from %s\n", len(result), c.listID)
	return result, nil
}

// Get fetches one task.
func (c *Client) Get(ctx context.Context, id string) (domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return domain.Task{}, wrapError("fetch task", id, err)
	}
	return c.codec.Decode(item), nil
}

// Create inserts a task, stamping its creation time into the notes.
func (c *Client) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item, err := c.codec.Encode(draft, time.Now())
	if err != nil {
		return domain.Task{}, err
	}
	created, err := c.svc.Tasks.Insert(c.listID, item).Context(ctx).Do()
	if err != nil {
		return domain.Task{}, wrapError("add task", "", err)
	}
	return c.codec.Decode(created), nil
}

// Update replaces the task's fields, keeping its recorded creation time and
// any text the notes held besides the metadata lines.
func (c *Client) Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return domain.Task{}, wrapError("update task", id, err)
	}

	item, err := c.codec.EncodeUpdate(draft, current)
	if err != nil {
		return domain.Task{}, err
	}
	updated, err := c.svc.Tasks.Update(c.listID, id, item).Context(ctx).Do()
	if err != nil {
		return domain.Task{}, wrapError("update task", id, err)
	}
	return c.codec.Decode(updated), nil
}

// Delete removes the task and returns it as it was.
func (c *Client) Delete(ctx context.Context, id string) (domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return domain.Task{}, wrapError("delete task", id, err)
	}
	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return domain.Task{}, wrapError("delete task", id, err)
	}
	return c.codec.Decode(current), nil
}

// wrapError maps API errors onto the application taxonomy.
func wrapError(operation, id string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, APITimeout.String())
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound && id != "" {
			return errors.NewNotFoundError("task", id)
		}
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return errors.NewTransportError(operation, apiErr.Code, fmt.Errorf("token expired or revoked"))
		}
		return errors.NewTransportError(operation, apiErr.Code, err)
	}
	return errors.NewTransportError(operation, 0, err)
}
