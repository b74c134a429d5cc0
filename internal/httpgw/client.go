// Package httpgw implements gateway.Gateway against the kanban HTTP API.
package httpgw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

type Options struct {
	Owner      string
	HTTPClient *http.Client
	Logger     *log.Logger
	// Retries is how many times a mutating request is resent after a network error.
	// The resend carries the same Idempotency-Key, so the server runs it at most once.
	Retries int
	// RetryDelay is the pause before each resend.
	RetryDelay time.Duration
}

type Client struct {
	base   *url.URL
	opts   Options
	http   *http.Client
	logger *log.Logger
}

// TransportError is a request that did not produce an API response.
type TransportError struct {
	Op     gateway.Op
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected response (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http(s): %q", baseURL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	return &Client{base: u, opts: opts, http: opts.HTTPClient, logger: opts.Logger}, nil
}

// call sends one request and decodes {data}/{success}/{error} into out.
func call[T any](ctx context.Context, c *Client, op gateway.Op, method, path string, body any) (T, error) {
	var zero T
	var payload []byte
	if body != nil {
		b, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = b
	}
	mutating := method != http.MethodGet
	key := ""
	if mutating {
		key = uuid.NewString()
	}

	attempts := 1
	if mutating && c.opts.Retries > 0 {
		attempts += c.opts.Retries
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(c.opts.RetryDelay):
			}
			c.logger.WithFields(log.Fields{"op": op, "attempt": i + 1}).WithError(lastErr).Debug("resending request")
		}
		res, err := c.send(ctx, method, path, payload, key)
		if err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			lastErr = &TransportError{Op: op, Err: err}
			continue
		}
		return decode[T](op, res)
	}
	return zero, lastErr
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, key string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.Owner != "" {
		req.Header.Set(gateway.HeaderOwner, c.opts.Owner)
	}
	if key != "" {
		req.Header.Set(gateway.HeaderIdempotencyKey, key)
	}
	return c.http.Do(req)
}

func decode[T any](op gateway.Op, res *http.Response) (T, error) {
	var zero T
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return zero, &TransportError{Op: op, Status: res.StatusCode, Err: err}
	}
	var env gateway.Response[T]
	if err := sonic.ConfigStd.Unmarshal(raw, &env); err != nil {
		return zero, &TransportError{Op: op, Status: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Error != "" {
		if res.StatusCode == http.StatusUnprocessableEntity {
			return zero, gateway.Fail(op, env.Error)
		}
		return zero, &TransportError{Op: op, Status: res.StatusCode, Err: errors.New(env.Error)}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return zero, &TransportError{Op: op, Status: res.StatusCode, Err: errors.New(http.StatusText(res.StatusCode))}
	}
	return env.Data, nil
}

func boardPath(boardID string, rest ...string) string {
	p := "/api/boards/" + url.PathEscape(boardID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// scoped returns a client whose requests carry owner.
func (c *Client) scoped(owner string) *Client {
	if owner == "" || owner == c.opts.Owner {
		return c
	}
	cp := *c
	cp.opts.Owner = owner
	return &cp
}

func (c *Client) CreateBoard(ctx context.Context, req gateway.CreateBoardRequest) (model.Board, error) {
	if err := req.Validate(); err != nil {
		return model.Board{}, err
	}
	return call[model.Board](ctx, c.scoped(req.Owner), gateway.OpCreateBoard, http.MethodPost, "/api/boards", gateway.TitleBody{Title: req.Title})
}

func (c *Client) RenameBoard(ctx context.Context, req gateway.RenameBoardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c.scoped(req.Owner), gateway.OpRenameBoard, http.MethodPatch, boardPath(req.BoardID), gateway.TitleBody{Title: req.Title})
	return err
}

func (c *Client) DeleteBoard(ctx context.Context, req gateway.DeleteBoardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c.scoped(req.Owner), gateway.OpDeleteBoard, http.MethodDelete, boardPath(req.BoardID), nil)
	return err
}

func (c *Client) ListBoards(ctx context.Context, req gateway.ListBoardsRequest) ([]model.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	boards, err := call[[]model.Board](ctx, c.scoped(req.Owner), gateway.OpListBoards, http.MethodGet, "/api/boards", nil)
	if boards == nil && err == nil {
		boards = []model.Board{}
	}
	return boards, err
}

func (c *Client) LoadBoard(ctx context.Context, req gateway.LoadBoardRequest) (model.Board, []model.List, error) {
	if err := req.Validate(); err != nil {
		return model.Board{}, nil, err
	}
	p, err := call[gateway.BoardPayload](ctx, c.scoped(req.Owner), gateway.OpLoadBoard, http.MethodGet, boardPath(req.BoardID), nil)
	if err != nil {
		return model.Board{}, nil, err
	}
	return p.Board, p.Lists, nil
}

func (c *Client) CreateList(ctx context.Context, req gateway.CreateListRequest) (model.List, error) {
	if err := req.Validate(); err != nil {
		return model.List{}, err
	}
	return call[model.List](ctx, c, gateway.OpCreateList, http.MethodPost, boardPath(req.BoardID, "lists"),
		gateway.TitleBody{ID: req.ID, Title: req.Title})
}

func (c *Client) RenameList(ctx context.Context, req gateway.RenameListRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpRenameList, http.MethodPatch, boardPath(req.BoardID, "lists", req.ListID), gateway.TitleBody{Title: req.Title})
	return err
}

func (c *Client) ReorderLists(ctx context.Context, req gateway.ReorderListsRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpReorderLists, http.MethodPut, boardPath(req.BoardID, "lists", "order"),
		gateway.ReorderListsBody{OrderedIDs: req.OrderedIDs})
	return err
}

func (c *Client) DeleteList(ctx context.Context, req gateway.DeleteListRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpDeleteList, http.MethodDelete, boardPath(req.BoardID, "lists", req.ListID), nil)
	return err
}

func (c *Client) CreateCard(ctx context.Context, req gateway.CreateCardRequest) (model.Card, error) {
	if err := req.Validate(); err != nil {
		return model.Card{}, err
	}
	return call[model.Card](ctx, c, gateway.OpCreateCard, http.MethodPost, boardPath(req.BoardID, "cards"),
		gateway.TitleBody{ID: req.ID, ListID: req.ListID, Title: req.Title})
}

func (c *Client) RenameCard(ctx context.Context, req gateway.RenameCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpRenameCard, http.MethodPatch, boardPath(req.BoardID, "cards", req.CardID), gateway.TitleBody{Title: req.Title})
	return err
}

func (c *Client) ReorderCard(ctx context.Context, req gateway.ReorderCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpReorderCard, http.MethodPut, boardPath(req.BoardID, "cards", "order"), gateway.ReorderCardBody{
		SourceListID:  req.SourceListID,
		DestListID:    req.DestListID,
		SourceCardIDs: req.SourceCardIDs,
		DestCardIDs:   req.DestCardIDs,
	})
	return err
}

func (c *Client) DeleteCard(ctx context.Context, req gateway.DeleteCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := call[any](ctx, c, gateway.OpDeleteCard, http.MethodDelete, boardPath(req.BoardID, "cards", req.CardID), nil)
	return err
}

var _ gateway.Gateway = (*Client)(nil)
