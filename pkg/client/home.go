package client

import (
	"context"
	"errors"
	"sync"
)

// ErrMutationInFlight is returned when a view's triggering action is invoked
// again before the previous mutation finished.
var ErrMutationInFlight = errors.New("mutation already in flight")

// RecommendedCard pairs a recommended user with whether the viewer already
// has an outgoing request to them, so the send action can be disabled.
type RecommendedCard struct {
	User        User
	RequestSent bool
}

// HomeView backs the home screen: the friends strip plus recommended
// partners with send-request actions.
type HomeView struct {
	api   *Client
	cache *QueryCache

	mu   sync.Mutex
	busy bool
}

func NewHomeView(api *Client, cache *QueryCache) *HomeView {
	return &HomeView{api: api, cache: cache}
}

func (v *HomeView) Friends(ctx context.Context) ([]User, error) {
	return fetchCached(ctx, v.cache, KeyFriends, v.api.Friends)
}

func (v *HomeView) Recommended(ctx context.Context) ([]RecommendedCard, error) {
	users, err := fetchCached(ctx, v.cache, KeyRecommendedUsers, v.api.RecommendedUsers)
	if err != nil {
		return nil, err
	}
	outgoing, err := fetchCached(ctx, v.cache, KeyOutgoingRequests, v.api.OutgoingFriendRequests)
	if err != nil {
		return nil, err
	}

	sent := deriveOutgoingIDSet(outgoing)
	cards := make([]RecommendedCard, 0, len(users))
	for _, user := range users {
		_, alreadySent := sent[user.ID]
		cards = append(cards, RecommendedCard{User: user, RequestSent: alreadySent})
	}
	return cards, nil
}

// SendRequest sends a friend request and invalidates the outgoing
// collection so the card flips to "request sent" on the next read. While a
// send is in flight further sends are refused.
func (v *HomeView) SendRequest(ctx context.Context, userID int64) error {
	if !v.begin() {
		return ErrMutationInFlight
	}
	defer v.end()

	if _, err := v.api.SendFriendRequest(ctx, userID); err != nil {
		return err
	}
	v.cache.Invalidate(KeyOutgoingRequests)
	return nil
}

func (v *HomeView) begin() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy {
		return false
	}
	v.busy = true
	return true
}

func (v *HomeView) end() {
	v.mu.Lock()
	v.busy = false
	v.mu.Unlock()
}

// deriveOutgoingIDSet recomputes the set of recipient ids with an
// outstanding request from the fetched list itself, rather than tracking a
// separate mutable set that could drift from it.
func deriveOutgoingIDSet(outgoing []FriendRequest) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(outgoing))
	for _, req := range outgoing {
		if req.Recipient != nil {
			ids[req.Recipient.ID] = struct{}{}
		}
	}
	return ids
}
