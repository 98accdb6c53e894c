package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"langswap/internal/mocks"
	"langswap/internal/models"
	"langswap/internal/repositories"
	"langswap/internal/services"
)

func setupFriendsRouter(handler *FriendHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.GET("/users", handler.ListRecommended)
	r.GET("/users/friends", handler.ListFriends)
	r.POST("/users/friend-request/:id", handler.SendRequest)
	r.PUT("/users/friend-request/:id/accept", handler.AcceptRequest)
	r.DELETE("/users/friend-request/:id/reject", handler.RejectRequest)
	r.GET("/users/friend-requests", handler.ListIncoming)
	r.DELETE("/users/friends/:id", handler.RemoveFriend)
	return r
}

func newFriendHandler(friends *mocks.MockFriendRepository, users *mocks.MockUserRepository) *FriendHandler {
	return NewFriendHandler(services.NewRelationshipService(friends, users), nil)
}

func TestSendRequestInvalidID(t *testing.T) {
	handler := newFriendHandler(new(mocks.MockFriendRepository), new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/users/friend-request/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendRequestToSelfReturnsBadRequest(t *testing.T) {
	handler := newFriendHandler(new(mocks.MockFriendRepository), new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/users/friend-request/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendRequestDuplicateReturnsConflict(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	mockUsers := new(mocks.MockUserRepository)
	handler := newFriendHandler(mockFriends, mockUsers)
	router := setupFriendsRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(2)).Return(&models.User{ID: 2, FullName: "Bob"}, nil).Once()
	mockFriends.On("AreFriends", mock.Anything, int64(1), int64(2)).Return(false, nil).Once()
	mockFriends.On("HasPendingRequest", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/users/friend-request/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	mockFriends.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestSendRequestUnknownRecipientReturnsNotFound(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	mockUsers := new(mocks.MockUserRepository)
	handler := newFriendHandler(mockFriends, mockUsers)
	router := setupFriendsRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(9)).Return((*models.User)(nil), sql.ErrNoRows).Once()

	req := httptest.NewRequest(http.MethodPost, "/users/friend-request/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestSendRequestSuccess(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	mockUsers := new(mocks.MockUserRepository)
	handler := newFriendHandler(mockFriends, mockUsers)
	router := setupFriendsRouter(handler)

	mockUsers.On("GetByID", mock.Anything, int64(2)).Return(&models.User{ID: 2, FullName: "Bob"}, nil).Once()
	mockFriends.On("AreFriends", mock.Anything, int64(1), int64(2)).Return(false, nil).Once()
	mockFriends.On("HasPendingRequest", mock.Anything, int64(1), int64(2)).Return(false, nil).Once()
	mockFriends.On("CreateRequest", mock.Anything, int64(1), int64(2)).
		Return(&models.FriendRequest{ID: 7, SenderID: 1, RecipientID: 2, Status: models.RequestStatusPending}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/users/friend-request/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.FriendRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, int64(7), resp.ID)
	require.Equal(t, models.RequestStatusPending, resp.Status)

	mockFriends.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestAcceptRequestNotFound(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("AcceptRequest", mock.Anything, int64(5), int64(1)).Return(sql.ErrNoRows).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/friend-request/5/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockFriends.AssertExpectations(t)
}

func TestRejectRequestForbidden(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("RejectRequest", mock.Anything, int64(5), int64(1)).Return(repositories.ErrRequestForbidden).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/friend-request/5/reject", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	mockFriends.AssertExpectations(t)
}

func TestRemoveFriendNotFound(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("DeleteFriendship", mock.Anything, int64(1), int64(3)).Return(sql.ErrNoRows).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/friends/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockFriends.AssertExpectations(t)
}

func TestRemoveFriendSuccess(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("DeleteFriendship", mock.Anything, int64(1), int64(3)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/friends/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	mockFriends.AssertExpectations(t)
}

func TestListIncomingEmptyFeed(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("GetIncomingRequests", mock.Anything, int64(1)).Return([]models.FriendRequest{}, nil).Once()
	mockFriends.On("GetAcceptedRequests", mock.Anything, int64(1)).Return([]models.FriendRequest{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/friend-requests", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var feed services.RequestsFeed
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&feed))
	require.NotNil(t, feed.IncomingRequests)
	require.Empty(t, feed.IncomingRequests)
	require.Empty(t, feed.AcceptedRequests)

	mockFriends.AssertExpectations(t)
}

func TestListFriendsEmpty(t *testing.T) {
	mockFriends := new(mocks.MockFriendRepository)
	handler := newFriendHandler(mockFriends, new(mocks.MockUserRepository))
	router := setupFriendsRouter(handler)

	mockFriends.On("ListFriends", mock.Anything, int64(1)).Return([]int64{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/friends", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	mockFriends.AssertExpectations(t)
}
