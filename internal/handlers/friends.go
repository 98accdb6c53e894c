package handlers

import (
	"context"
	"database/sql"
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"langswap/internal/metrics"
	"langswap/internal/repositories"
	"langswap/internal/services"
	"langswap/internal/telemetry"
)

type FriendHandler struct {
	relationships *services.RelationshipService
	audit         *telemetry.AuditEmitter
}

func NewFriendHandler(relationships *services.RelationshipService, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{relationships: relationships, audit: audit}
}

func (h *FriendHandler) ListRecommended(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	users, err := h.relationships.ListRecommended(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load recommended users"})
		return
	}

	c.JSON(nethttp.StatusOK, users)
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		h.emitAudit(c.Request.Context(), "ERROR", "internal error", requestID, nil)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	senderID := *userID

	recipientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx := c.Request.Context()
	req, err := h.relationships.SendRequest(ctx, senderID, recipientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTarget):
			h.emitAudit(ctx, "ERROR", "cannot send request to yourself", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot send request to yourself"})
		case errors.Is(err, sql.ErrNoRows):
			h.emitAudit(ctx, "ERROR", "target user not found", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "target user not found"})
		case errors.Is(err, services.ErrAlreadyFriends):
			h.emitAudit(ctx, "ERROR", "users are already friends", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "users are already friends"})
		case errors.Is(err, repositories.ErrDuplicateRequest):
			h.emitAudit(ctx, "ERROR", "pending friend request already exists", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusConflict, gin.H{"error": "pending friend request already exists"})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			metrics.IncFriendRequest(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to send request"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request sent to '"+strconv.FormatInt(recipientID, 10)+"'", requestID, userID)
	metrics.IncFriendRequest(metrics.StatusSuccess)
	c.JSON(nethttp.StatusCreated, req)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.relationships.AcceptRequest, "accepted", "accept", metrics.IncFriendAccept)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleDecision(c, h.relationships.RejectRequest, "rejected", "reject", metrics.IncFriendReject)
}

func (h *FriendHandler) handleDecision(c *gin.Context, action func(ctx context.Context, requestID, userID int64) error, status, verb string, inc func(string)) {
	reqID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		h.emitAudit(c.Request.Context(), "ERROR", "internal error", requestID, nil)
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if err := action(ctx, reqID, *userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.emitAudit(ctx, "ERROR", "friend request not found", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, repositories.ErrRequestForbidden):
			h.emitAudit(ctx, "ERROR", "not allowed to "+verb+" this request", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusForbidden, gin.H{"error": "not allowed to " + verb + " this request"})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			inc(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to update request"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request "+status, requestID, userID)
	inc(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"status": status})
}

func (h *FriendHandler) ListIncoming(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	feed, err := h.relationships.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}

	c.JSON(nethttp.StatusOK, feed)
}

func (h *FriendHandler) ListOutgoing(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	outgoing, err := h.relationships.ListOutgoing(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to load outgoing requests"})
		return
	}

	c.JSON(nethttp.StatusOK, outgoing)
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	friends, err := h.relationships.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch friends"})
		return
	}

	c.JSON(nethttp.StatusOK, friends)
}

func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		metrics.IncFriendRemove(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncFriendRemove(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	if err := h.relationships.RemoveFriend(ctx, *userID, friendID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTarget):
			metrics.IncFriendRemove(metrics.StatusFailed)
			c.JSON(nethttp.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		case errors.Is(err, sql.ErrNoRows):
			h.emitAudit(ctx, "ERROR", "friendship not found", requestID, userID)
			metrics.IncFriendRemove(metrics.StatusFailed)
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "friendship not found"})
		default:
			h.emitAudit(ctx, "ERROR", "internal error", requestID, userID)
			metrics.IncFriendRemove(metrics.StatusFailed)
			c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to remove friend"})
		}
		return
	}

	h.emitAudit(ctx, "INFO", "Friend removed", requestID, userID)
	metrics.IncFriendRemove(metrics.StatusSuccess)
	c.Status(nethttp.StatusNoContent)
}

func (h *FriendHandler) emitAudit(ctx context.Context, level, text, requestID string, userID *int64) {
	if h.audit == nil {
		return
	}
	h.audit.EmitAudit(ctx, level, text, requestID, userID)
}
