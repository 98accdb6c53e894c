package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"langswap/internal/models"
	"langswap/internal/rabbitmq"
	"langswap/internal/repositories"
)

// MockUserRepository mocks the user directory for services and handlers.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash, fullName, profilePic)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) CompleteOnboarding(ctx context.Context, id int64, update repositories.OnboardingUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ListRecommended(ctx context.Context, userID int64) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

// MockFriendRepository mocks relationship store behavior for handlers and services.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, senderID, recipientID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) GetAcceptedRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) GetOutgoingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) error {
	args := m.Called(ctx, requestID, userID)
	return args.Error(0)
}

func (m *MockFriendRepository) RejectRequest(ctx context.Context, requestID, userID int64) error {
	args := m.Called(ctx, requestID, userID)
	return args.Error(0)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	var friends []int64
	if val := args.Get(0); val != nil {
		friends = val.([]int64)
	}
	return friends, args.Error(1)
}

func (m *MockFriendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

var (
	_ repositories.UserRepository   = (*MockUserRepository)(nil)
	_ repositories.FriendRepository = (*MockFriendRepository)(nil)
)

// MockPublisher mocks RabbitMQ publisher behavior for telemetry.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ rabbitmq.Publisher = (*MockPublisher)(nil)
