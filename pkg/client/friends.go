package client

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// FriendsView backs the friends screen: the full friends list with local
// search, a language filter, and the remove-friend action.
type FriendsView struct {
	api   *Client
	cache *QueryCache

	mu   sync.Mutex
	busy bool
}

func NewFriendsView(api *Client, cache *QueryCache) *FriendsView {
	return &FriendsView{api: api, cache: cache}
}

func (v *FriendsView) Friends(ctx context.Context) ([]User, error) {
	return fetchCached(ctx, v.cache, KeyFriends, v.api.Friends)
}

// FilterFriends applies the search box and language dropdown locally.
// Search matches name, bio, or location as a case-insensitive substring;
// language matches native or learning language exactly, ignoring case. An
// empty search or language passes everything.
func FilterFriends(friends []User, search, language string) []User {
	search = strings.ToLower(strings.TrimSpace(search))
	language = strings.ToLower(strings.TrimSpace(language))

	filtered := make([]User, 0, len(friends))
	for _, friend := range friends {
		if search != "" {
			matches := strings.Contains(strings.ToLower(friend.FullName), search) ||
				strings.Contains(strings.ToLower(friend.Bio), search) ||
				strings.Contains(strings.ToLower(friend.Location), search)
			if !matches {
				continue
			}
		}
		if language != "" {
			matches := strings.EqualFold(friend.NativeLanguage, language) ||
				strings.EqualFold(friend.LearningLanguage, language)
			if !matches {
				continue
			}
		}
		filtered = append(filtered, friend)
	}
	return filtered
}

// Languages returns the distinct languages across the friends list, sorted,
// for the filter dropdown.
func Languages(friends []User) []string {
	seen := make(map[string]struct{})
	for _, friend := range friends {
		for _, lang := range []string{friend.NativeLanguage, friend.LearningLanguage} {
			lang = strings.ToLower(strings.TrimSpace(lang))
			if lang != "" {
				seen[lang] = struct{}{}
			}
		}
	}

	languages := make([]string, 0, len(seen))
	for lang := range seen {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// RemoveFriend removes the friendship and invalidates the friends
// collection. Refused while a previous removal is still in flight.
func (v *FriendsView) RemoveFriend(ctx context.Context, friendID int64) error {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return ErrMutationInFlight
	}
	v.busy = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.busy = false
		v.mu.Unlock()
	}()

	if err := v.api.RemoveFriend(ctx, friendID); err != nil {
		return err
	}
	v.cache.Invalidate(KeyFriends)
	return nil
}
