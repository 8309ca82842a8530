package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledInstallsPropagatorsOnly(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup() err=%v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() err=%v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	var hasTraceparent, hasBaggage bool
	for _, f := range fields {
		switch f {
		case "traceparent":
			hasTraceparent = true
		case "baggage":
			hasBaggage = true
		}
	}
	if !hasTraceparent || !hasBaggage {
		t.Fatalf("propagator fields=%v", fields)
	}
}
