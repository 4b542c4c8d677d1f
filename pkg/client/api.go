package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	Username  string    `json:"username"`
	Thumbnail *string   `json:"thumbnail"`
	Desc      string    `json:"desc"`
	RegDate   time.Time `json:"regdate"`
}

type NewPost struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Desc      string `json:"desc"`
}

type tokenResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

func (c *Client) Register(ctx context.Context, email, username, password string) error {
	in := map[string]string{"email": email, "username": username, "password": password}
	return c.Do(ctx, http.MethodPost, "/register", in, nil)
}

// Login stores the access token in the cache; the refresh cookie goes to the
// cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var out tokenResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/login", in, &out); err != nil {
		return User{}, err
	}
	c.cache.Set(out.User, out.AccessToken)
	return out.User, nil
}

// Logout revokes the server session and always clears the local cache.
func (c *Client) Logout(ctx context.Context) error {
	defer c.cache.Clear()
	return c.Do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.Do(ctx, http.MethodGet, "/user", nil, &out)
	return out, err
}

func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	err := c.Do(ctx, http.MethodGet, "/posts", nil, &out)
	return out, err
}

func (c *Client) SearchPosts(ctx context.Context, title string) ([]Post, error) {
	var out []Post
	err := c.Do(ctx, http.MethodGet, "/posts/search?title="+url.QueryEscape(title), nil, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id int64) (Post, error) {
	var out Post
	err := c.Do(ctx, http.MethodGet, postPath(id), nil, &out)
	return out, err
}

func (c *Client) RelatedPosts(ctx context.Context, id int64) ([]Post, error) {
	var out []Post
	err := c.Do(ctx, http.MethodGet, postPath(id)+"/related", nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, p NewPost) (Post, error) {
	var out Post
	err := c.Do(ctx, http.MethodPost, "/posts", p, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, postPath(id), nil, nil)
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}
