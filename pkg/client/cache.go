package client

import "sync"

// User is the identity returned by /login and /token.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenCache holds the current access token and the user it belongs to.
// It lives only as long as the process.
type TokenCache struct {
	mu    sync.RWMutex
	user  *User
	token string
}

func (c *TokenCache) Set(user User, accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &user
	c.token = accessToken
}

// Token returns the cached access token, or "" when logged out.
func (c *TokenCache) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *TokenCache) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.token = ""
}
