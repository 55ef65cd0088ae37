package calls

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	apperrors "chathub/errors"
	"chathub/repositories"
	"chathub/runtime"
)

// Coordinator relays signaling payloads between peers and records call
// summaries. Signal bodies pass through verbatim: the server routes on the
// addressing fields and never inspects SDP or peer ids.
type Coordinator struct {
	log      *slog.Logger
	hub      *runtime.Hub
	messages repositories.IMessageRepository
	users    repositories.IUserDirectory
	ring     *RingRegistry
}

func NewCoordinator(log *slog.Logger, hub *runtime.Hub, messages repositories.IMessageRepository,
	users repositories.IUserDirectory, ring *RingRegistry) *Coordinator {
	return &Coordinator{
		log:      log,
		hub:      hub,
		messages: messages,
		users:    users,
		ring:     ring,
	}
}

// CallUser opens a ring for the callee and relays the offer to every device
// they have connected. An offline callee gets no delivery; the ring expires
// into a missed-call summary instead.
func (c *Coordinator) CallUser(ctx context.Context, fromUserID, toUserID string, callType domain.CallType, payload json.RawMessage) error {
	if fromUserID == "" {
		return apperrors.ErrUnauthenticated
	}
	c.ring.Start(fromUserID, toUserID, callType)
	c.hub.DeliverToUser(ctx, toUserID, event.CallSignal{Name: "call_incoming", Data: payload})
	return nil
}

// AnswerCall resolves the answering user's ring and relays the answer back
// to the caller.
func (c *Coordinator) AnswerCall(ctx context.Context, fromUserID, toUserID string, payload json.RawMessage) error {
	if fromUserID == "" {
		return apperrors.ErrUnauthenticated
	}
	c.ring.ResolveFrom(fromUserID, toUserID)
	c.hub.DeliverToUser(ctx, toUserID, event.CallSignal{Name: "call_accepted", Data: payload})
	return nil
}

// RejectCall resolves the ring and tells the caller the callee declined.
func (c *Coordinator) RejectCall(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == "" {
		return apperrors.ErrUnauthenticated
	}
	c.ring.ResolveFrom(fromUserID, toUserID)
	c.hub.DeliverToUser(ctx, toUserID, event.CallSignal{Name: "call_rejected"})
	return nil
}

// EndCall relays a hang-up. Either side can end, so both directions of the
// pair's ring are resolved; rings opened by anyone else stay open.
func (c *Coordinator) EndCall(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == "" {
		return apperrors.ErrUnauthenticated
	}
	c.ring.ResolveFrom(fromUserID, toUserID)
	c.ring.ResolveFrom(toUserID, fromUserID)
	c.hub.DeliverToUser(ctx, toUserID, event.CallSignal{Name: "call_ended"})
	return nil
}

// RecordCallSummary persists the call's durable trace as a direct message
// and echoes it to both parties, exactly like an ordinary send.
func (c *Coordinator) RecordCallSummary(ctx context.Context, fromUserID, toUserID string,
	callType domain.CallType, durationSeconds int, status domain.CallStatus) (domain.MessagePayload, error) {
	if fromUserID == "" {
		return domain.MessagePayload{}, apperrors.ErrUnauthenticated
	}

	message, err := c.messages.Create(domain.Message{
		SenderID:       fromUserID,
		ReceiverID:     toUserID,
		Body:           domain.CallSummaryText(callType, durationSeconds, status),
		AttachmentType: domain.AttachmentTypeCall,
	})
	if err != nil {
		c.log.Error("Error saving call record", "from", fromUserID, "error", err)
		return domain.MessagePayload{}, err
	}

	sender, err := c.users.FindByID(fromUserID)
	if err != nil {
		sender = domain.User{ID: fromUserID}
	}
	payload := message.Render(sender)
	c.hub.DeliverToUser(ctx, toUserID, event.MessageDelivered{MessagePayload: payload})
	c.hub.DeliverToUser(ctx, fromUserID, event.MessageSent{MessagePayload: payload})
	c.log.Info("Call record saved", "body", message.Body)
	return payload, nil
}

var _ contract.Worker = (*RingSweeper)(nil)

// RingSweeper expires rings nobody resolved. The caller gets a call_timeout
// so their UI can stop ringing, and the callee gets a missed-call summary in
// the conversation.
type RingSweeper struct {
	log         *slog.Logger
	coordinator *Coordinator
	timeout     time.Duration
	interval    time.Duration
}

func NewRingSweeper(log *slog.Logger, coordinator *Coordinator, timeout, interval time.Duration) *RingSweeper {
	return &RingSweeper{
		log:         log,
		coordinator: coordinator,
		timeout:     timeout,
		interval:    interval,
	}
}

func (s *RingSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Context done, stopping ring sweeper")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RingSweeper) sweep(ctx context.Context) {
	for _, ring := range s.coordinator.ring.Expire(s.timeout) {
		s.log.Info("Ring expired", "caller", ring.CallerID, "callee", ring.CalleeID)
		s.coordinator.hub.DeliverToUser(ctx, ring.CallerID, event.CallTimeout{UserID: ring.CalleeID})
		if _, err := s.coordinator.RecordCallSummary(ctx, ring.CallerID, ring.CalleeID,
			ring.Type, 0, domain.CallMissed); err != nil {
			s.log.Error("Failed to record missed call", "caller", ring.CallerID, "error", err)
		}
	}
}
