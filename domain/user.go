package domain

// User is the directory view of a platform account. The realtime core only
// reads display fields and mutates the online flag.
type User struct {
	ID          string
	DisplayName string
	AvatarURL   string
	IsOnline    bool
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)
