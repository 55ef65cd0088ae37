package main

import "time"

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	DebugPort            int           `env:"DEBUG_PORT"`
	RingTimeout          time.Duration `env:"RING_TIMEOUT,default=30s"`
	RingSweepInterval    time.Duration `env:"RING_SWEEP_INTERVAL,default=5s"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`

	// Empty secret leaves the websocket endpoint open, for deployments that
	// terminate auth upstream.
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER,default=chathub"`

	VAPIDSubscriber string `env:"VAPID_SUBSCRIBER"`
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	PushTTL         int    `env:"PUSH_TTL,default=3600"`
}
