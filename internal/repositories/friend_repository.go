package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"langswap/internal/models"
	"langswap/internal/rabbitmq"
	"langswap/internal/telemetry"
)

var (
	ErrRequestForbidden = errors.New("friend request not allowed")
	ErrDuplicateRequest = errors.New("pending friend request already exists")
)

// How far back accepted requests stay visible in the notifications feed.
const acceptedRetention = 30 * 24 * time.Hour

type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error)
	GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error)
	GetAcceptedRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error)
	GetOutgoingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID, userID int64) error
	RejectRequest(ctx context.Context, requestID, userID int64) error
	ListFriends(ctx context.Context, userID int64) ([]int64, error)
	HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
}

type friendRepository struct {
	db        *sqlx.DB
	publisher rabbitmq.Publisher
}

func NewFriendRepository(db *sqlx.DB, publisher rabbitmq.Publisher) FriendRepository {
	return &friendRepository{db: db, publisher: publisher}
}

const requestColumns = `id, sender_id, recipient_id, status, created_at, accepted_at`

func (r *friendRepository) CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO friend_requests (sender_id, recipient_id, status)
VALUES ($1, $2, 'pending')
RETURNING `+requestColumns+`
`, senderID, recipientID).StructScan(&req)
	if err != nil {
		// The partial unique index serializes racing requests for the
		// same pair; the loser lands here.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	r.logPublish(ctx, telemetry.EventFriendRequestCreated, map[string]any{
		"request_id":   req.ID,
		"sender_id":    req.SenderID,
		"recipient_id": req.RecipientID,
		"created_at":   req.CreatedAt,
	})

	return &req, nil
}

func (r *friendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT `+requestColumns+`
FROM friend_requests
WHERE recipient_id=$1 AND status='pending'
ORDER BY created_at DESC
`, userID)
	return reqs, err
}

// GetAcceptedRequests returns recently accepted requests the user originally
// sent, so the sender can be told who accepted.
func (r *friendRepository) GetAcceptedRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT `+requestColumns+`
FROM friend_requests
WHERE sender_id=$1 AND status='accepted' AND accepted_at >= $2
ORDER BY accepted_at DESC
LIMIT 50
`, userID, time.Now().UTC().Add(-acceptedRetention))
	return reqs, err
}

func (r *friendRepository) GetOutgoingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT `+requestColumns+`
FROM friend_requests
WHERE sender_id=$1 AND status='pending'
ORDER BY created_at DESC
`, userID)
	return reqs, err
}

func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) error {
	var eventPayload map[string]any
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var req models.FriendRequest
		if err := tx.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM friend_requests WHERE id=$1`, requestID); err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return sql.ErrNoRows
		}
		if req.RecipientID != userID {
			return ErrRequestForbidden
		}

		acceptedAt := time.Now().UTC()

		// Conditional on pending so a racing accept/reject loses cleanly.
		res, err := tx.ExecContext(ctx, `
UPDATE friend_requests SET status='accepted', accepted_at=$2
WHERE id=$1 AND status='pending'
`, requestID, acceptedAt)
		if err != nil {
			return err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return sql.ErrNoRows
		}

		if err := r.insertFriendship(ctx, tx, req.SenderID, req.RecipientID); err != nil {
			return err
		}
		if err := r.insertFriendship(ctx, tx, req.RecipientID, req.SenderID); err != nil {
			return err
		}

		eventPayload = map[string]any{
			"user_id":     req.SenderID,
			"friend_id":   req.RecipientID,
			"accepted_at": acceptedAt,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if eventPayload != nil {
		r.logPublish(ctx, telemetry.EventFriendshipCreated, eventPayload)
	}

	return nil
}

// RejectRequest removes the request row entirely; a rejected request leaves
// no trace and the same id can never be accepted afterwards.
func (r *friendRepository) RejectRequest(ctx context.Context, requestID, userID int64) error {
	var req models.FriendRequest
	if err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM friend_requests WHERE id=$1`, requestID); err != nil {
		return err
	}
	if req.Status != models.RequestStatusPending {
		return sql.ErrNoRows
	}
	if req.RecipientID != userID {
		return ErrRequestForbidden
	}

	res, err := r.db.ExecContext(ctx, `
DELETE FROM friend_requests
WHERE id=$1 AND recipient_id=$2 AND status='pending'
`, requestID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sql.ErrNoRows
	}

	r.logPublish(ctx, telemetry.EventFriendRequestRejected, map[string]any{
		"request_id":   requestID,
		"sender_id":    req.SenderID,
		"recipient_id": req.RecipientID,
	})

	return nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	friends := []int64{}
	err := r.db.SelectContext(ctx, &friends, `
SELECT friend_id
FROM friendships
WHERE user_id=$1
ORDER BY friend_id
`, userID)
	return friends, err
}

func (r *friendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE ((sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1))
AND status='pending'
)
`, userID, otherID)
	return exists, err
}

func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2
)
`, userID, otherID)
	return exists, err
}

// DeleteFriendship removes both directions of the relation. Deleting a
// friendship that does not exist reports sql.ErrNoRows rather than
// succeeding silently.
func (r *friendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM friendships
WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)
`, userID, friendID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sql.ErrNoRows
	}

	r.logPublish(ctx, telemetry.EventFriendshipRemoved, map[string]any{
		"user_id":   userID,
		"friend_id": friendID,
	})

	return nil
}

func (r *friendRepository) insertFriendship(ctx context.Context, tx *sqlx.Tx, userID, friendID int64) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
ON CONFLICT (user_id, friend_id) DO NOTHING
`, userID, friendID)
	return err
}

func (r *friendRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *friendRepository) logPublish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("warning: failed to publish %s: %v", eventType, err)
	}
}
