// Package client talks to the Aura Kitchen HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

const (
	sessionCookieName    = "aura_sid"
	idempotencyKeyHeader = "Idempotency-Key"

	defaultTimeout = 20 * time.Second
)

type APIClient struct {
	baseURL *url.URL
	http    *http.Client
}

type MenuQuery struct {
	Category    string
	Search      string
	PopularOnly bool
}

type errorBody struct {
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details"`
}

func New(baseURL string) (*APIClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: defaultTimeout},
	}, nil
}

// SessionID returns the current auth session cookie, if any.
func (c *APIClient) SessionID() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == sessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionID restores an auth session from an earlier run.
func (c *APIClient) SetSessionID(sid string) {
	if sid == "" {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: sessionCookieName, Value: sid, Path: "/"}})
}

func (c *APIClient) ListMenu(ctx context.Context, q MenuQuery) ([]domain.MenuItem, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.PopularOnly {
		params.Set("popular", "true")
	}

	var items []domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/api/menu", params, nil, nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *APIClient) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := c.do(ctx, http.MethodGet, "/api/menu/"+strconv.FormatInt(id, 10), nil, nil, nil, http.StatusOK, &item)
	var serr *domain.SubmissionError
	if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SubmitOrder posts sub to order intake under key; an empty key gets a fresh
// one. A second submission with the same key fails with status 409. A
// rejection comes back as *domain.SubmissionError, a transport failure as
// *domain.NetworkError.
func (c *APIClient) SubmitOrder(ctx context.Context, key string, sub domain.OrderSubmission) (*domain.Order, error) {
	if key == "" {
		key = uuid.NewString()
	}
	header := http.Header{}
	header.Set(idempotencyKeyHeader, key)

	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, header, sub, http.StatusCreated, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *APIClient) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.do(ctx, http.MethodGet, "/api/reviews", nil, nil, nil, http.StatusOK, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *APIClient) CreateReview(ctx context.Context, sub domain.ReviewSubmission) (*domain.Review, error) {
	var review domain.Review
	if err := c.do(ctx, http.MethodPost, "/api/reviews", nil, nil, sub, http.StatusCreated, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *APIClient) SendMessage(ctx context.Context, sub domain.MessageSubmission) (*domain.Message, error) {
	var msg domain.Message
	if err := c.do(ctx, http.MethodPost, "/api/contact", nil, nil, sub, http.StatusCreated, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *APIClient) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, nil, creds, http.StatusCreated, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, nil, creds, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil, http.StatusNoContent, nil)
}

// CurrentUser returns domain.ErrUnauthenticated when there is no live session.
func (c *APIClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, "/api/user", nil, nil, nil, http.StatusOK, &user)
	var serr *domain.SubmissionError
	if errors.As(err, &serr) && serr.Status == http.StatusUnauthorized {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, header http.Header, in any, want int, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeFailure(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeFailure keeps the server's message for 400s only; any other status
// gets a generic message.
func decodeFailure(resp *http.Response) error {
	serr := &domain.SubmissionError{Status: resp.StatusCode}

	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)

	switch {
	case resp.StatusCode == http.StatusBadRequest && eb.Message != "":
		serr.Message = eb.Message
		serr.Details = eb.Details
	case resp.StatusCode == http.StatusConflict && eb.Message != "":
		serr.Message = eb.Message
	default:
		serr.Message = http.StatusText(resp.StatusCode)
		if serr.Message == "" {
			serr.Message = "Request failed"
		}
	}
	return serr
}
