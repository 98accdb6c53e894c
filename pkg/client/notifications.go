package client

import (
	"context"
	"sync"
)

// NotificationsView backs the notifications screen: incoming requests with
// accept/reject actions, plus "X accepted your request" entries.
type NotificationsView struct {
	api   *Client
	cache *QueryCache

	mu   sync.Mutex
	busy bool
}

func NewNotificationsView(api *Client, cache *QueryCache) *NotificationsView {
	return &NotificationsView{api: api, cache: cache}
}

func (v *NotificationsView) Feed(ctx context.Context) (*RequestsFeed, error) {
	return fetchCached(ctx, v.cache, KeyFriendRequestsFeed, v.api.FriendRequests)
}

// Accept accepts an incoming request. On success both the feed and the
// friends list are stale: the request leaves the pending section and the
// sender becomes a friend.
func (v *NotificationsView) Accept(ctx context.Context, requestID int64) error {
	if !v.begin() {
		return ErrMutationInFlight
	}
	defer v.end()

	if err := v.api.AcceptFriendRequest(ctx, requestID); err != nil {
		return err
	}
	v.cache.Invalidate(KeyFriendRequestsFeed, KeyFriends)
	return nil
}

// Reject rejects an incoming request; only the feed becomes stale.
func (v *NotificationsView) Reject(ctx context.Context, requestID int64) error {
	if !v.begin() {
		return ErrMutationInFlight
	}
	defer v.end()

	if err := v.api.RejectFriendRequest(ctx, requestID); err != nil {
		return err
	}
	v.cache.Invalidate(KeyFriendRequestsFeed)
	return nil
}

func (v *NotificationsView) begin() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy {
		return false
	}
	v.busy = true
	return true
}

func (v *NotificationsView) end() {
	v.mu.Lock()
	v.busy = false
	v.mu.Unlock()
}
