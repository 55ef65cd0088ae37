package domain

// MembershipStatus mirrors the CRUD layer's lifecycle for group invites.
// Channel memberships use the same shape with a role in Status.
type MembershipStatus = string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
)

// Membership relates a user to a group or channel.
type Membership struct {
	UserID string
	RoomID string // group or channel id, depending on the owning store
	Status MembershipStatus
}

// Room is a named group or channel as stored by the CRUD layer. The realtime
// core reads the name when wording notifications.
type Room struct {
	ID   string
	Name string
}
