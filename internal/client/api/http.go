package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// authTimeout caps authentication calls client-side so a dead backend does
// not leave the UI disabled.
const authTimeout = 15 * time.Second

// HTTPClient talks JSON over HTTP to the workspace backend and upgrades to
// a websocket for the change feed.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	session *Session
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *HTTPClient) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *HTTPClient) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// doJSON performs one request with the current access token. On a
// token-expired response it refreshes once and replays the request, the
// same way the original client re-invoked after a refresh.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	err := c.doJSONOnce(ctx, method, path, query, in, out)
	if err == nil || !errors.Is(err, common.ErrTokenExpired) {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	return c.doJSONOnce(ctx, method, path, query, in, out)
}

func (c *HTTPClient) doJSONOnce(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.accessToken(); tok != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapResponseError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := ""
	if c.session != nil {
		refreshToken = c.session.RefreshToken
	}
	c.mu.Unlock()
	if refreshToken == "" {
		return common.ErrUnauthorized
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.doJSONOnce(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, in, &resp); err != nil {
		return err
	}

	c.mu.Lock()
	if c.session != nil {
		c.session.AccessToken = resp.AccessToken
		c.session.RefreshToken = resp.RefreshToken
	}
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	in := map[string]string{"email": email, "password": password}
	return c.doJSONOnce(ctx, http.MethodPost, "/api/v1/auth/register", nil, in, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	in := map[string]string{"email": email, "password": password}
	var resp struct {
		UserID       string `json:"user_id"`
		Email        string `json:"email"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.doJSONOnce(ctx, http.MethodPost, "/api/v1/auth/login", nil, in, &resp); err != nil {
		return nil, err
	}

	s := &Session{
		UserID:       resp.UserID,
		Email:        resp.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	c.setSession(s)
	out := *s
	return &out, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.doJSONOnce(ctx, http.MethodGet, "/api/v1/ping", nil, nil, nil)
}

func (c *HTTPClient) Create(ctx context.Context, collection string, fields map[string]any) (*models.Record, error) {
	var rec models.Record
	in := map[string]any{"fields": fields}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/records/"+collection, nil, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	var rec models.Record
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/records/"+collection+"/"+id, nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) List(ctx context.Context, collection string, f Filter) ([]*models.Record, error) {
	q := url.Values{}
	if f.NameFold != "" {
		q.Set("name_fold", f.NameFold)
	}
	if f.ExcludeID != "" {
		q.Set("exclude_id", f.ExcludeID)
	}

	var recs []*models.Record
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/records/"+collection, q, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *HTTPClient) Update(ctx context.Context, collection, id string, fields map[string]any, expectedVersion int64) (*models.Record, error) {
	q := url.Values{}
	if expectedVersion > 0 {
		q.Set("expected_version", strconv.FormatInt(expectedVersion, 10))
	}

	var rec models.Record
	in := map[string]any{"fields": fields}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/records/"+collection+"/"+id, q, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Delete(ctx context.Context, collection, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/records/"+collection+"/"+id, nil, nil, nil)
}

func (c *HTTPClient) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var entries []models.AuditEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/audit", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) PresignPut(ctx context.Context, filename string) (string, string, error) {
	in := map[string]string{"filename": filename}
	var resp struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/attachments/presign-put", nil, in, &resp); err != nil {
		return "", "", err
	}
	return resp.Key, resp.URL, nil
}

func (c *HTTPClient) PresignGet(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("key", key)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/attachments/presign-get", q, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
