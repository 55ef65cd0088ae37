package runtime

import (
	"github.com/samber/lo"

	"chathub/domain"
	"chathub/repositories"
)

// Resolver computes the rooms a user can be addressed through. It queries
// both membership stores once, at bind time; later membership changes only
// take effect through an explicit join event or the next reconnect.
//
// Memberships are NOT filtered by status: a pending group invite already
// receives realtime delivery. That mirrors the platform's behavior and is
// deliberate: filtering here would silently diverge from what the CRUD
// layer shows the user.
type Resolver struct {
	groups   repositories.IMembershipStore
	channels repositories.IMembershipStore
}

func NewResolver(groups, channels repositories.IMembershipStore) *Resolver {
	return &Resolver{groups: groups, channels: channels}
}

func (r *Resolver) ResolveRooms(userID string) ([]domain.RoomID, error) {
	groupMemberships, err := r.groups.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	channelMemberships, err := r.channels.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	rooms := lo.Map(groupMemberships, func(m domain.Membership, _ int) domain.RoomID {
		return domain.GroupRoom(m.RoomID)
	})
	return append(rooms, lo.Map(channelMemberships, func(m domain.Membership, _ int) domain.RoomID {
		return domain.ChannelRoom(m.RoomID)
	})...), nil
}
