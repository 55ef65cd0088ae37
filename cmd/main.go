package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chathub/auth"
	"chathub/calls"
	"chathub/internal"
	"chathub/notify"
	"chathub/repositories"
	"chathub/router"
	"chathub/runtime"
	"chathub/runtime/workers"
	"chathub/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Stores
	messages := repositories.NewMessageRepository(db, log)
	users := repositories.NewUserDirectory(db)
	groups := repositories.NewGroupMembershipStore(db)
	channels := repositories.NewChannelMembershipStore(db)
	notifications := repositories.NewNotificationStore(db)
	pushSubs := repositories.NewPushSubscriptionStore(db)

	// 4. Live runtime
	registry := runtime.NewRegistry()
	presence := runtime.NewPresence()
	resolver := runtime.NewResolver(groups, channels)
	hub := runtime.NewHub(log, registry, presence, resolver, users)

	// 5. Notifications & messaging
	var push notify.PushSender
	if config.VAPIDPublicKey != "" && config.VAPIDPrivateKey != "" {
		push = notify.NewWebPushSender(config.VAPIDSubscriber,
			config.VAPIDPublicKey, config.VAPIDPrivateKey, config.PushTTL)
	} else {
		log.Warn("VAPID keys missing, web push disabled")
	}
	notifier := notify.NewNotifier(log, config.BufferSize, notifications, pushSubs, push, hub)
	messageRouter := router.NewRouter(log, hub, messages, users, groups, channels, notifier)

	// 6. Call signaling
	ring := calls.NewRingRegistry()
	coordinator := calls.NewCoordinator(log, hub, messages, users, ring)
	sweeper := calls.NewRingSweeper(log, coordinator, config.RingTimeout, config.RingSweepInterval)

	// 7. Supervision
	sup := workers.NewSupervisor(log)
	sup.Add(notifier, sweeper,
		workers.NewTelemetryWorker(log, config.TelemetryInterval, hub.Stats))

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.MessageMapper, hub.Stats)
		log.Info("Debug inspector started", "port", config.DebugPort)
	}

	// 9. HTTP server with the websocket endpoint
	var verifier ws.TokenVerifier
	if config.JWTSecret != "" {
		verifier = auth.NewVerifier(config.JWTSecret, config.JWTIssuer)
	} else {
		log.Warn("JWT_SECRET missing, websocket endpoint is open")
	}
	wsServer := ws.NewServer(log, hub, messageRouter, coordinator, verifier, config.ConnectionBufferSize)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsServer)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting realtime server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 10. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 11. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
