package services

import (
	"context"
	"errors"
	"time"

	"langswap/internal/models"
	"langswap/internal/repositories"
)

var (
	ErrInvalidTarget  = errors.New("cannot target yourself")
	ErrAlreadyFriends = errors.New("users are already friends")
)

// RequestWithUser is a friend request with the counterparty profile resolved,
// shaped for the notifications and outgoing feeds.
type RequestWithUser struct {
	ID         int64        `json:"id"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	AcceptedAt *time.Time   `json:"accepted_at,omitempty"`
	Sender     *models.User `json:"sender,omitempty"`
	Recipient  *models.User `json:"recipient,omitempty"`
}

// RequestsFeed backs the notifications view: requests awaiting the user's
// decision, plus requests of theirs that were recently accepted.
type RequestsFeed struct {
	IncomingRequests []RequestWithUser `json:"incoming_requests"`
	AcceptedRequests []RequestWithUser `json:"accepted_requests"`
}

// RelationshipService owns the friend request lifecycle. All mutations of
// requests and friendships go through here.
type RelationshipService struct {
	friends repositories.FriendRepository
	users   repositories.UserRepository
}

func NewRelationshipService(friends repositories.FriendRepository, users repositories.UserRepository) *RelationshipService {
	return &RelationshipService{friends: friends, users: users}
}

func (s *RelationshipService) ListRecommended(ctx context.Context, userID int64) ([]models.User, error) {
	return s.users.ListRecommended(ctx, userID)
}

// SendRequest creates a pending request from sender to recipient. The
// pre-checks give precise errors; the store's uniqueness constraint is what
// actually serializes two racing mutual requests, so a race loser still
// surfaces ErrDuplicateRequest.
func (s *RelationshipService) SendRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrInvalidTarget
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	friends, err := s.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.friends.HasPendingRequest(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, repositories.ErrDuplicateRequest
	}

	return s.friends.CreateRequest(ctx, senderID, recipientID)
}

func (s *RelationshipService) AcceptRequest(ctx context.Context, requestID, actingUserID int64) error {
	return s.friends.AcceptRequest(ctx, requestID, actingUserID)
}

func (s *RelationshipService) RejectRequest(ctx context.Context, requestID, actingUserID int64) error {
	return s.friends.RejectRequest(ctx, requestID, actingUserID)
}

func (s *RelationshipService) ListIncoming(ctx context.Context, userID int64) (*RequestsFeed, error) {
	incoming, err := s.friends.GetIncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted, err := s.friends.GetAcceptedRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	feed := &RequestsFeed{
		IncomingRequests: make([]RequestWithUser, 0, len(incoming)),
		AcceptedRequests: make([]RequestWithUser, 0, len(accepted)),
	}

	for _, req := range incoming {
		sender, err := s.users.GetByID(ctx, req.SenderID)
		if err != nil {
			return nil, err
		}
		feed.IncomingRequests = append(feed.IncomingRequests, RequestWithUser{
			ID:        req.ID,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
			Sender:    sender,
		})
	}

	for _, req := range accepted {
		recipient, err := s.users.GetByID(ctx, req.RecipientID)
		if err != nil {
			return nil, err
		}
		feed.AcceptedRequests = append(feed.AcceptedRequests, RequestWithUser{
			ID:         req.ID,
			Status:     req.Status,
			CreatedAt:  req.CreatedAt,
			AcceptedAt: req.AcceptedAt,
			Recipient:  recipient,
		})
	}

	return feed, nil
}

func (s *RelationshipService) ListOutgoing(ctx context.Context, userID int64) ([]RequestWithUser, error) {
	outgoing, err := s.friends.GetOutgoingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]RequestWithUser, 0, len(outgoing))
	for _, req := range outgoing {
		recipient, err := s.users.GetByID(ctx, req.RecipientID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, RequestWithUser{
			ID:        req.ID,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
			Recipient: recipient,
		})
	}
	return resp, nil
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	ids, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		friends = append(friends, *user)
	}
	return friends, nil
}

func (s *RelationshipService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return ErrInvalidTarget
	}
	return s.friends.DeleteFriendship(ctx, userID, friendID)
}
