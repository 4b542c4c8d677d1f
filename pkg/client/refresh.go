package client

import (
	"context"
	"log"
	"net/http"
	"sync"
)

type reissueResult struct {
	token string
	err   error
}

// refresher makes sure only one /token call runs at a time. Callers that
// are rejected while a call is in flight park a buffered result handle in
// pending and receive that call's outcome.
type refresher struct {
	mu       sync.Mutex
	inFlight bool
	pending  []chan reissueResult
}

// reissue returns a usable access token for a call that was rejected while
// carrying staleToken. led reports whether this caller ran the /token call.
func (c *Client) reissue(ctx context.Context, staleToken string) (token string, led bool, err error) {
	r := &c.refresher

	r.mu.Lock()
	if r.inFlight {
		handle := make(chan reissueResult, 1)
		r.pending = append(r.pending, handle)
		r.mu.Unlock()

		select {
		case res := <-handle:
			return res.token, false, res.err
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}

	// another flight already replaced the token this call was sent with
	if current := c.cache.Token(); current != "" && current != staleToken {
		r.mu.Unlock()
		return current, false, nil
	}

	r.inFlight = true
	r.mu.Unlock()

	var res reissueResult
	defer func() {
		r.mu.Lock()
		waiters := r.pending
		r.pending = nil
		r.inFlight = false
		r.mu.Unlock()

		for _, handle := range waiters {
			handle <- res
		}
	}()

	// the flight outlives the caller that started it
	res.token, res.err = c.requestToken(context.WithoutCancel(ctx))
	return res.token, true, res.err
}

// requestToken exchanges the refresh cookie for a new access token and
// updates the cache. Any failure clears it.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	var out tokenResponse
	resp, err := c.send(ctx, http.MethodPost, tokenPath, nil, "")
	if err == nil {
		err = resp.decode(&out)
	}
	if err != nil {
		log.Printf("[CLIENT] Token reissue failed: %v", err)
		c.cache.Clear()
		return "", err
	}

	c.cache.Set(out.User, out.AccessToken)
	log.Printf("[CLIENT] Access token reissued for %s", out.User.Email)
	return out.AccessToken, nil
}

// pendingCount reports how many callers are parked on the current flight.
func (r *refresher) pendingCount() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending), r.inFlight
}
