package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

type FriendRequest struct {
	ID          int64      `db:"id" json:"id"`
	SenderID    int64      `db:"sender_id" json:"sender_id"`
	RecipientID int64      `db:"recipient_id" json:"recipient_id"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	AcceptedAt  *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
}

type Friendship struct {
	ID       int64 `db:"id" json:"id"`
	UserID   int64 `db:"user_id" json:"user_id"`
	FriendID int64 `db:"friend_id" json:"friend_id"`
}
