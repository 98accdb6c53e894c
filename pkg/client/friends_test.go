package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleFriends() []User {
	return []User{
		{ID: 1, FullName: "Ana Silva", Bio: "love hiking", NativeLanguage: "portuguese", LearningLanguage: "english", Location: "Lisbon"},
		{ID: 2, FullName: "Kenji Sato", Bio: "coffee person", NativeLanguage: "japanese", LearningLanguage: "english", Location: "Osaka"},
		{ID: 3, FullName: "Marie Dubois", Bio: "enjoys hiking trips", NativeLanguage: "french", LearningLanguage: "japanese", Location: "Lyon"},
	}
}

func TestFilterFriendsNoFilters(t *testing.T) {
	friends := sampleFriends()
	require.Equal(t, friends, FilterFriends(friends, "", ""))
}

func TestFilterFriendsSearchMatchesNameBioLocation(t *testing.T) {
	friends := sampleFriends()

	byName := FilterFriends(friends, "kenji", "")
	require.Len(t, byName, 1)
	require.Equal(t, int64(2), byName[0].ID)

	byBio := FilterFriends(friends, "HIKING", "")
	require.Len(t, byBio, 2)

	byLocation := FilterFriends(friends, "lyon", "")
	require.Len(t, byLocation, 1)
	require.Equal(t, int64(3), byLocation[0].ID)
}

func TestFilterFriendsLanguageMatchesEitherDirection(t *testing.T) {
	friends := sampleFriends()

	japanese := FilterFriends(friends, "", "Japanese")
	require.Len(t, japanese, 2)

	french := FilterFriends(friends, "", "french")
	require.Len(t, french, 1)
	require.Equal(t, int64(3), french[0].ID)
}

func TestFilterFriendsCombined(t *testing.T) {
	friends := sampleFriends()

	combined := FilterFriends(friends, "hiking", "english")
	require.Len(t, combined, 1)
	require.Equal(t, int64(1), combined[0].ID)

	none := FilterFriends(friends, "kenji", "french")
	require.Empty(t, none)
}

func TestLanguagesUniqueSorted(t *testing.T) {
	langs := Languages(sampleFriends())
	require.Equal(t, []string{"english", "french", "japanese", "portuguese"}, langs)
}

func TestLanguagesSkipsEmpty(t *testing.T) {
	langs := Languages([]User{{NativeLanguage: "", LearningLanguage: "spanish"}})
	require.Equal(t, []string{"spanish"}, langs)
}

func TestFriendsViewRemoveInvalidatesFriends(t *testing.T) {
	var removed bool
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /users/friends/{id}", func(w http.ResponseWriter, r *http.Request) {
		removed = true
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cache := NewQueryCache()
	cache.Set(KeyFriends, sampleFriends())

	view := NewFriendsView(New(server.URL), cache)
	require.NoError(t, view.RemoveFriend(context.Background(), 2))
	require.True(t, removed)

	_, ok := cache.Get(KeyFriends)
	require.False(t, ok)
}
