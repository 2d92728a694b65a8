package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LikeUserHeader carries the anonymous like token
const LikeUserHeader = "X-CWD-Like-User"

var ErrInvalidCommentID = errors.New("invalid comment id")

// APIError is a non-2xx response from the comment API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Config describes the page the widget is mounted on
type Config struct {
	BaseURL      string
	PostSlug     string
	PostTitle    string
	PostURL      string
	AvatarPrefix string
	AdminToken   string
}

// Client is a typed client for the public comment API
type Client struct {
	cfg        Config
	identity   UserIdentityProvider
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client (10s timeout)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(cfg Config, identity UserIdentityProvider, opts ...ClientOption) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if identity == nil {
		identity = NewRandomIdentity()
	}
	c := &Client{
		cfg:      cfg,
		identity: identity,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the like token of this session
func (c *Client) UserID() string {
	return c.identity.UserID()
}

// FetchComments loads one page of threaded comments
func (c *Client) FetchComments(ctx context.Context, page, limit int) (*CommentPage, error) {
	params := url.Values{}
	params.Set("post_slug", c.cfg.PostSlug)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("nested", "true")
	if c.cfg.AvatarPrefix != "" {
		params.Set("avatar_prefix", c.cfg.AvatarPrefix)
	}

	var out CommentPage
	if err := c.do(ctx, http.MethodGet, "/api/comments?"+params.Encode(), nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitComment posts a comment or a reply. Page fields are filled from Config.
func (c *Client) SubmitComment(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	req.PostSlug = c.cfg.PostSlug
	req.PostTitle = c.cfg.PostTitle
	req.PostURL = c.cfg.PostURL
	if req.AdminToken == "" {
		req.AdminToken = c.cfg.AdminToken
	}

	var out SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/comments", req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyAdminKey(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodPost, "/api/verify-admin", map[string]string{"adminToken": key}, false, nil)
}

func (c *Client) TrackVisit(ctx context.Context) error {
	body := map[string]string{
		"postSlug":  c.cfg.PostSlug,
		"postTitle": c.cfg.PostTitle,
		"postUrl":   c.cfg.PostURL,
	}
	return c.do(ctx, http.MethodPost, "/api/analytics/visit", body, false, nil)
}

func (c *Client) GetLikeStatus(ctx context.Context) (*LikeStatus, error) {
	var out LikeStatus
	path := "/api/like?post_slug=" + url.QueryEscape(c.cfg.PostSlug)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LikePage(ctx context.Context) (*LikeStatus, error) {
	body := map[string]string{
		"postSlug":  c.cfg.PostSlug,
		"postTitle": c.cfg.PostTitle,
		"postUrl":   c.cfg.PostURL,
	}
	var out LikeStatus
	if err := c.do(ctx, http.MethodPost, "/api/like", body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnlikePage(ctx context.Context) (*LikeStatus, error) {
	var out LikeStatus
	path := "/api/like?post_slug=" + url.QueryEscape(c.cfg.PostSlug)
	if err := c.do(ctx, http.MethodDelete, path, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikeComment adds one like to a comment. There is no un-like.
func (c *Client) LikeComment(ctx context.Context, id uint) (*CommentLikeResult, error) {
	if id == 0 {
		return nil, ErrInvalidCommentID
	}
	var out CommentLikeResult
	if err := c.do(ctx, http.MethodPost, "/api/comments/like", map[string]uint{"id": id}, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchConfig(ctx context.Context) (*PublicConfig, error) {
	var out PublicConfig
	if err := c.do(ctx, http.MethodGet, "/api/config/comments", nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, withUser bool, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withUser {
		req.Header.Set(LikeUserHeader, c.identity.UserID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Code = envelope.Error
			apiErr.Message = envelope.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
