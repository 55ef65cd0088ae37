// Package domain contains core concepts of the messaging system.
// No runtime, network, or UI logic should be added here.
package domain

// RoomID is an addressable broadcast target on the realtime layer.
// There is one room per user identity, one per chat group, one per channel.
type RoomID string

// UserRoom is the identity room: it reaches every connection the user
// currently has open, across devices.
func UserRoom(userID string) RoomID {
	return RoomID(userID)
}

func GroupRoom(groupID string) RoomID {
	return RoomID("group_" + groupID)
}

func ChannelRoom(channelID string) RoomID {
	return RoomID("channel_" + channelID)
}
