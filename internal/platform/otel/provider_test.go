package otel_test

import (
	"context"
	"testing"

	"github.com/raidroom/engagebot/internal/platform/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("ENGAGE_OTEL_ENDPOINT", "")
	t.Setenv("ENGAGE_OTEL_ENABLED", "true")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("ENGAGE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("ENGAGE_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Use a non-routable address so no actual export happens.
	t.Setenv("ENGAGE_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("ENGAGE_OTEL_ENABLED", "true")
	t.Setenv("ENGAGE_OTEL_SAMPLE_RATIO", "0.5")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Shutdown should flush cleanly even though the endpoint is unreachable.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_RejectsMalformedSettings(t *testing.T) {
	t.Setenv("ENGAGE_OTEL_ENABLED", "maybe")

	if _, err := otel.Setup(context.Background(), "bad-settings"); err == nil {
		t.Fatal("expected malformed boolean to fail")
	}
}

func TestTracerStartsSpansWithoutProvider(t *testing.T) {
	_, span := otel.Tracer("engagement-test").Start(context.Background(), "noop")
	span.End()
}
