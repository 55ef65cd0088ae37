//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_push_sender.go -package=mocks
// Package notify fans notifications out to offline-relevant recipients:
// a persisted record, a realtime toast, and a web-push per registered
// device endpoint. It runs decoupled from the send path so notification
// latency and failures never touch message delivery.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	apperrors "chathub/errors"
	"chathub/repositories"
	"chathub/runtime"
)

var _ contract.Worker = (*Notifier)(nil)

// Task is one pending notification for one recipient.
type Task struct {
	UserID    string
	Title     string
	Message   string
	Type      string
	Link      string
	RelatedID string
}

// PushSender dispatches one web-push payload to one endpoint. It returns
// ErrSubscriptionGone when the endpoint is expired or invalid.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}

type Notifier struct {
	log   *slog.Logger
	tasks chan Task
	store repositories.INotificationStore
	subs  repositories.IPushSubscriptionStore
	push  PushSender
	hub   *runtime.Hub
}

func NewNotifier(log *slog.Logger, bufferSize int, store repositories.INotificationStore,
	subs repositories.IPushSubscriptionStore, push PushSender, hub *runtime.Hub) *Notifier {
	return &Notifier{
		log:   log,
		tasks: make(chan Task, bufferSize),
		store: store,
		subs:  subs,
		push:  push,
		hub:   hub,
	}
}

// Enqueue never blocks: when the queue is full the task is dropped and
// logged. A lost notification is acceptable; a stalled send path is not.
func (n *Notifier) Enqueue(task Task) {
	select {
	case n.tasks <- task:
	default:
		n.log.Warn("Notification queue full, dropping task", "user_id", task.UserID)
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			n.log.Debug("Context done, stopping notifier")
			return nil
		case task := <-n.tasks:
			n.process(ctx, task)
		}
	}
}

// process handles one task fully. Every failure is local: a store error
// skips the toast and push, a push error only evicts its own endpoint.
func (n *Notifier) process(ctx context.Context, task Task) {
	_, err := n.store.Create(domain.Notification{
		UserID:    task.UserID,
		Title:     task.Title,
		Message:   task.Message,
		Type:      task.Type,
		Link:      task.Link,
		RelatedID: task.RelatedID,
	})
	if err != nil {
		n.log.Error("Failed to create notification", "user_id", task.UserID, "error", err)
		return
	}

	n.hub.DeliverToUser(ctx, task.UserID, event.NotificationAlert{
		Title:   task.Title,
		Message: task.Message,
		Type:    task.Type,
		Link:    task.Link,
	})

	n.dispatchPush(ctx, task)
}

func (n *Notifier) dispatchPush(ctx context.Context, task Task) {
	if n.push == nil {
		return
	}
	subs, err := n.subs.ListForUser(task.UserID)
	if err != nil {
		n.log.Error("Failed to list push subscriptions", "user_id", task.UserID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"title": task.Title,
		"body":  task.Message,
		"link":  task.Link,
	})
	if err != nil {
		n.log.Error("Failed to encode push payload", "error", err)
		return
	}

	for _, sub := range subs {
		if err := n.push.Send(ctx, sub, payload); err != nil {
			if errors.Is(err, apperrors.ErrSubscriptionGone) {
				// Cleanup-on-failure: the endpoint will never work again.
				if err := n.subs.Delete(sub.Endpoint); err != nil {
					n.log.Error("Failed to delete stale push subscription", "error", err)
				}
				continue
			}
			n.log.Warn("Push dispatch failed", "user_id", task.UserID, "error", err)
		}
	}
}
