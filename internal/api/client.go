// Package api is the HTTP client for the circle record service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/model"
)

// Error is a non-2xx response from the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("circle service: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("circle service: %d: %s", e.Status, e.Message)
}

// TokenSource returns the bearer token to send, or "" for none.
type TokenSource func() string

// Client talks to the circle service. The zero value is not usable; build
// one with New.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	token   TokenSource
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithToken(t TokenSource) Option      { return func(c *Client) { c.token = t } }
func WithLogger(l *zap.Logger) Option     { return func(c *Client) { c.log = l } }

// WithTimeout bounds every request, uploads included. It applies to the
// client given by WithHTTPClient whatever the option order.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{}, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		h := *c.http
		h.Timeout = c.timeout
		c.http = &h
	}
	return c, nil
}

// List fetches one page of circles.
func (c *Client) List(ctx context.Context, p model.PageParams) (model.Page, error) {
	p = p.Normalize()
	q := url.Values{}
	q.Set("current", strconv.Itoa(p.Current))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	if p.Desc != "" {
		q.Set("desc", p.Desc)
	}
	var page model.Page
	if err := c.do(ctx, http.MethodGet, "/api/circles?"+q.Encode(), nil, &page); err != nil {
		return model.Page{}, err
	}
	if page.Data == nil {
		page.Data = []model.Circle{}
	}
	return page, nil
}

// Get fetches one circle by id.
func (c *Client) Get(ctx context.Context, id string) (model.Circle, error) {
	var out model.Circle
	err := c.do(ctx, http.MethodGet, "/api/circles/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Add(ctx context.Context, d model.NewDraft) error {
	return c.do(ctx, http.MethodPost, "/api/circles", d, nil)
}

func (c *Client) Update(ctx context.Context, p model.ExistingPatch) error {
	return c.do(ctx, http.MethodPut, "/api/circles/"+url.PathEscape(p.ID), p, nil)
}

type removeRequest struct {
	Key []string `json:"key"`
}

func (c *Client) Remove(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/api/circles", removeRequest{Key: ids}, nil)
}

// UploadResult is the upload endpoint's reply.
type UploadResult struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Upload sends one avatar image and returns its reference. The image is
// checked locally for size and type before anything is sent.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, model.MaxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if _, err := model.CheckAvatar(int64(len(data)), data); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload.do", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var res UploadResult
	if err := c.send(req, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + ref.Path
	u.RawQuery = ref.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("circle service",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(b, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(b))
		}
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}
