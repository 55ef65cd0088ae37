package ws

import (
	"context"
	"encoding/json"

	"chathub/domain"
	"chathub/domain/event"
	apperrors "chathub/errors"
)

// dispatch routes one inbound frame. Failures answer the offending
// connection with an error frame and never propagate: one bad client event
// must not affect anyone else's session.
func (s *Server) dispatch(ctx context.Context, conn *Conn, f frame) {
	var err error
	switch f.Event {
	case "join":
		err = s.handleJoin(ctx, conn, f.Data)
	case "join_group":
		err = s.handleJoinRoom(conn, f.Data, "groupId", domain.GroupRoom)
	case "join_channel":
		err = s.handleJoinRoom(conn, f.Data, "channelId", domain.ChannelRoom)
	case "private_message":
		err = s.handleDirectMessage(ctx, conn, f.Data)
	case "group_message":
		err = s.handleGroupMessage(ctx, conn, f.Data)
	case "channel_message":
		err = s.handleChannelMessage(ctx, conn, f.Data)
	case "typing":
		err = s.handleTyping(ctx, conn, f.Data, false)
	case "stop_typing":
		err = s.handleTyping(ctx, conn, f.Data, true)
	case "call_user":
		err = s.handleCallUser(ctx, conn, f.Data)
	case "answer_call":
		err = s.handleAnswerCall(ctx, conn, f.Data)
	case "reject_call":
		err = s.handleCallRoute(ctx, conn, f.Data, s.calls.RejectCall)
	case "end_call":
		err = s.handleCallRoute(ctx, conn, f.Data, s.calls.EndCall)
	case "save_call_record":
		err = s.handleSaveCallRecord(ctx, conn, f.Data)
	default:
		err = apperrors.ErrUnknownEvent
	}
	if err != nil {
		s.log.Debug("Rejected client event", "conn_id", conn.ID(), "event", f.Event, "error", err)
		s.reject(ctx, conn, f.Event, err)
	}
}

func (s *Server) reject(ctx context.Context, conn *Conn, eventName string, cause error) {
	_ = conn.Consume(ctx, event.Rejected{Event: eventName, Reason: cause.Error()})
}

func (s *Server) handleJoin(ctx context.Context, conn *Conn, data json.RawMessage) error {
	userID, err := decodeID(data, "userId")
	if err != nil {
		return err
	}
	if userID == "" {
		return apperrors.ErrInvalidPayload
	}
	return s.hub.OnJoin(ctx, conn.ID(), userID)
}

func (s *Server) handleJoinRoom(conn *Conn, data json.RawMessage, key string, room func(string) domain.RoomID) error {
	id, err := decodeID(data, key)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.ErrInvalidPayload
	}
	return s.hub.JoinRoom(conn.ID(), room(id))
}

func (s *Server) handleDirectMessage(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p directMessagePayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	content, err := domain.NormalizeContent(p.Message)
	if err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	_, err = s.router.SendDirect(ctx, fromUserID, p.ToUserID, content)
	return err
}

func (s *Server) handleGroupMessage(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p groupMessagePayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	content, err := domain.NormalizeContent(p.Message)
	if err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	_, err = s.router.SendGroup(ctx, fromUserID, p.GroupID, content)
	return err
}

func (s *Server) handleChannelMessage(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p channelMessagePayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	content, err := domain.NormalizeContent(p.Message)
	if err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	_, err = s.router.SendChannel(ctx, fromUserID, p.ChannelID, content)
	return err
}

func (s *Server) handleTyping(ctx context.Context, conn *Conn, data json.RawMessage, stopped bool) error {
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return apperrors.ErrInvalidPayload
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	s.router.Typing(ctx, conn.ID(), fromUserID, p.ToUserID, p.GroupID, stopped)
	return nil
}

func (s *Server) handleCallUser(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p callUserPayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	callType := domain.CallVoice
	if p.Type == string(domain.CallVideo) {
		callType = domain.CallVideo
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	// The full payload travels to the callee untouched: signal, peer id and
	// caller name belong to the clients.
	return s.calls.CallUser(ctx, fromUserID, p.UserToCall, callType, data)
}

func (s *Server) handleAnswerCall(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p callRoutePayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	return s.calls.AnswerCall(ctx, fromUserID, p.To, data)
}

func (s *Server) handleCallRoute(ctx context.Context, conn *Conn, data json.RawMessage,
	route func(ctx context.Context, fromUserID, toUserID string) error) error {
	var p callRoutePayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	return route(ctx, fromUserID, p.To)
}

func (s *Server) handleSaveCallRecord(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p callRecordPayload
	if err := s.decode(data, &p); err != nil {
		return err
	}
	fromUserID, _ := s.hub.BoundUser(conn.ID())
	_, err := s.calls.RecordCallSummary(ctx, fromUserID, p.ToUserID,
		domain.CallType(p.CallType), p.Duration, domain.CallStatus(p.Status))
	return err
}

func (s *Server) decode(data json.RawMessage, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.ErrInvalidPayload
	}
	if err := s.validate.Struct(target); err != nil {
		return apperrors.ErrInvalidPayload
	}
	return nil
}
