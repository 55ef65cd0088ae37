package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresence_First_And_Last_Transition(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// When a user connects twice
	req.True(presence.Connected("alice"))
	req.False(presence.Connected("alice"))
	req.True(presence.IsOnline("alice"))

	// Then only the last disconnect flips them offline
	req.False(presence.Disconnected("alice"))
	req.True(presence.IsOnline("alice"))
	req.True(presence.Disconnected("alice"))
	req.False(presence.IsOnline("alice"))
}

func TestPresence_Disconnect_Unknown_User(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	// A disconnect for a user that never connected reports no transition
	req.False(presence.Disconnected("ghost"))
	req.Zero(presence.OnlineCount())
}

func TestPresence_OnlineCount(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	presence.Connected("alice")
	presence.Connected("alice")
	presence.Connected("bob")

	req.Equal(2, presence.OnlineCount())
}
