package telemetry

// Routing keys for domain events published to the app.events exchange.
const (
	EventFriendRequestCreated  = "friend.request.created"
	EventFriendRequestRejected = "friend.request.rejected"
	EventFriendshipCreated     = "friendship.created"
	EventFriendshipRemoved     = "friendship.removed"
)
