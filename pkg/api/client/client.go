package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionCookie is the cookie the API reads the session credential from.
const SessionCookie = "access_token"

// Client provides typed access to the blog API for interactive tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// SignupInput is the registration form.
type SignupInput struct {
	Email         string `json:"email"`
	UserName      string `json:"user_name"`
	Password      string `json:"password"`
	PasswordCheck string `json:"password_check"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message     string `json:"message"`
	UserName    string `json:"user_name"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Profile describes the logged in user.
type Profile struct {
	Email    string `json:"email"`
	UserName string `json:"user_name"`
}

// Post is the public view of a post.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostPatch updates only the non-nil fields.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Comment is the public view of a comment.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Signup registers an account. It does not log in.
func (c *Client) Signup(ctx context.Context, input SignupInput) error {
	return c.do(ctx, http.MethodPost, "/api/users/signup", input, "", nil)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", payload, "", &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// Me returns the profile bound to token.
func (c *Client) Me(ctx context.Context, token string) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, token, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Signout asks the server to clear the session cookie.
func (c *Client) Signout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/users/signout", nil, "", nil)
}

// ListPosts returns a page of posts, newest first.
func (c *Client) ListPosts(ctx context.Context, skip, limit int) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/api/posts"+pageQuery(url.Values{}, skip, limit), nil, "", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id int64) (Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, postPath(id), nil, "", &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, token, title, content string) (Post, error) {
	payload := map[string]string{"title": title, "content": content}
	var post Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", payload, token, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// UpdatePost applies a partial update.
func (c *Client) UpdatePost(ctx context.Context, token string, id int64, patch PostPatch) (Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPatch, postPath(id), patch, token, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// DeletePost soft-deletes a post.
func (c *Client) DeletePost(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, postPath(id), nil, token, nil)
}

// ListComments returns a page of comments on a post.
func (c *Client) ListComments(ctx context.Context, postID int64, skip, limit int) ([]Comment, error) {
	query := url.Values{"post_id": {strconv.FormatInt(postID, 10)}}
	var comments []Comment
	if err := c.do(ctx, http.MethodGet, "/api/comments"+pageQuery(query, skip, limit), nil, "", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, token string, postID int64, content string) (Comment, error) {
	var comment Comment
	path := "/api/comments?post_id=" + strconv.FormatInt(postID, 10)
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"content": content}, token, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// UpdateComment replaces the content of a comment.
func (c *Client) UpdateComment(ctx context.Context, token string, postID, commentID int64, content string) (Comment, error) {
	var comment Comment
	if err := c.do(ctx, http.MethodPatch, commentPath(postID, commentID), map[string]string{"content": content}, token, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// DeleteComment soft-deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, token string, postID, commentID int64) error {
	return c.do(ctx, http.MethodDelete, commentPath(postID, commentID), nil, token, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "Bearer " + token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return APIError{Status: resp.StatusCode, Message: extractError(resp.Body)}
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

func postPath(id int64) string {
	return "/api/posts/" + strconv.FormatInt(id, 10)
}

func commentPath(postID, commentID int64) string {
	return "/api/comments/" + strconv.FormatInt(commentID, 10) + "?post_id=" + strconv.FormatInt(postID, 10)
}

func pageQuery(query url.Values, skip, limit int) string {
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}
