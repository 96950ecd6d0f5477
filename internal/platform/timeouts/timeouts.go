// Package timeouts defines shared timeout constants used across the bot.
// Centralizing these values keeps collaborator deadlines discoverable.
package timeouts

import "time"

// ClickFeed caps a single click-feed fetch before the report degrades to an
// empty click set.
const ClickFeed = 10 * time.Second

// PlatformCall caps one messaging-platform request.
const PlatformCall = 15 * time.Second

// HealthCheck caps one gRPC health probe round trip.
const HealthCheck = time.Second

// Shutdown limits how long servers and the scheduler wait for in-flight
// work during graceful shutdown.
const Shutdown = 5 * time.Second
