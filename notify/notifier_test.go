package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chathub/domain"
	apperrors "chathub/errors"
	"chathub/mocks"
	"chathub/repositories"
	"chathub/runtime"
)

func newTestStores(t *testing.T) (repositories.INotificationStore, repositories.IPushSubscriptionStore, *runtime.Hub) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	users := repositories.NewUserDirectory(db)
	groups := repositories.NewGroupMembershipStore(db)
	channels := repositories.NewChannelMembershipStore(db)
	hub := runtime.NewHub(log, runtime.NewRegistry(), runtime.NewPresence(),
		runtime.NewResolver(groups, channels), users)
	return repositories.NewNotificationStore(db), repositories.NewPushSubscriptionStore(db), hub
}

func TestNotifier_Process_Persists_And_Pushes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, subs, hub := newTestStores(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given one registered device
	req.NoError(subs.Save(domain.PushSubscription{
		UserID: "bob", Endpoint: "https://push.example.com/ep", P256dh: "k", Auth: "a",
	}))

	push := mocks.NewMockPushSender(ctrl)
	push.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	notifier := NewNotifier(slog.Default(), 8, store, subs, push, hub)

	// When a task is processed
	notifier.process(ctx, Task{
		UserID:  "bob",
		Title:   "New Message",
		Message: "Alice sent you a message",
		Type:    domain.NotificationTypeMessage,
		Link:    "/dashboard",
	})

	// Then the notification was persisted
	stored, err := store.ListForUser("bob")
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal("New Message", stored[0].Title)
	req.False(stored[0].IsRead)
}

func TestNotifier_Evicts_Gone_Subscription(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, subs, hub := newTestStores(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given one stale and one live device
	req.NoError(subs.Save(domain.PushSubscription{
		UserID: "bob", Endpoint: "https://push.example.com/stale", P256dh: "k", Auth: "a",
	}))
	req.NoError(subs.Save(domain.PushSubscription{
		UserID: "bob", Endpoint: "https://push.example.com/live", P256dh: "k", Auth: "a",
	}))

	push := mocks.NewMockPushSender(ctrl)
	push.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub domain.PushSubscription, _ []byte) error {
			if sub.Endpoint == "https://push.example.com/stale" {
				return apperrors.ErrSubscriptionGone
			}
			return nil
		}).
		Times(2)

	notifier := NewNotifier(slog.Default(), 8, store, subs, push, hub)

	// When dispatch hits the stale endpoint
	notifier.process(ctx, Task{UserID: "bob", Title: "t", Message: "m", Type: "message"})

	// Then only the live subscription survives
	remaining, err := subs.ListForUser("bob")
	req.NoError(err)
	req.Len(remaining, 1)
	req.Equal("https://push.example.com/live", remaining[0].Endpoint)
}

func TestNotifier_Transient_Push_Failure_Keeps_Subscription(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, subs, hub := newTestStores(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req.NoError(subs.Save(domain.PushSubscription{
		UserID: "bob", Endpoint: "https://push.example.com/ep", P256dh: "k", Auth: "a",
	}))

	push := mocks.NewMockPushSender(ctrl)
	push.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("503 from push service")).
		Times(1)

	notifier := NewNotifier(slog.Default(), 8, store, subs, push, hub)
	notifier.process(ctx, Task{UserID: "bob", Title: "t", Message: "m", Type: "message"})

	remaining, err := subs.ListForUser("bob")
	req.NoError(err)
	req.Len(remaining, 1)
}

func TestNotifier_Enqueue_Never_Blocks(t *testing.T) {
	req := require.New(t)
	store, subs, hub := newTestStores(t)

	// Given a notifier whose queue is full and not being drained
	notifier := NewNotifier(slog.Default(), 1, store, subs, nil, hub)
	notifier.Enqueue(Task{UserID: "bob"})

	done := make(chan struct{})
	go func() {
		notifier.Enqueue(Task{UserID: "carol"})
		close(done)
	}()

	// Then the overflow enqueue returns immediately, dropping the task
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Enqueue should drop instead of blocking")
	}
}

func TestNotifier_Run_Drains_Queue(t *testing.T) {
	req := require.New(t)
	store, subs, hub := newTestStores(t)

	notifier := NewNotifier(slog.Default(), 8, store, subs, nil, hub)
	notifier.Enqueue(Task{UserID: "bob", Title: "first", Message: "m", Type: "message"})
	notifier.Enqueue(Task{UserID: "bob", Title: "second", Message: "m", Type: "message"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = notifier.Run(ctx)
		close(done)
	}()

	// Then both tasks are stored shortly after
	req.Eventually(func() bool {
		stored, err := store.ListForUser("bob")
		return err == nil && len(stored) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
