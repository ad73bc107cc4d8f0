package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a Client for the API at baseURL. A base URL without a
// path is served under /api/.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("authclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("authclient: base url %q must be absolute", baseURL)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api/"
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var resp struct {
		SavedUser *User `json:"savedUser"`
	}
	if err := c.do(ctx, http.MethodPost, "auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.SavedUser == nil {
		return nil, errUnexpectedResponse
	}
	return resp.SavedUser, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, errUnexpectedResponse
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "auth/logout", token, nil, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token, profilePic string) (*User, error) {
	body := map[string]string{"profilePic": profilePic}
	var resp struct {
		UpdatedUser *User `json:"updatedUser"`
	}
	if err := c.do(ctx, http.MethodPut, "auth/updateProfile", token, body, &resp); err != nil {
		return nil, err
	}
	if resp.UpdatedUser == nil {
		return nil, errUnexpectedResponse
	}
	return resp.UpdatedUser, nil
}

// ListUsers fetches the users holding role: staff, manager or admin.
func (c *Client) ListUsers(ctx context.Context, token, role string) ([]User, error) {
	users := []User{}
	if err := c.do(ctx, http.MethodGet, "auth/"+url.PathEscape(role)+"user", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) RemoveUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, http.MethodDelete, "auth/removeuser/"+url.PathEscape(userID), token, nil, nil)
}

var errUnexpectedResponse = errors.New("authclient: unexpected response structure")

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("authclient: build path: %w", err)
	}
	endpoint := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authclient: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("authclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("authclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeAPIError reads the {"error": msg} envelope, also accepting {"message": msg}.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope)

	msg := envelope.Error
	if msg == "" {
		msg = envelope.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
