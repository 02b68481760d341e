package tracing

import (
	"context"
	"strings"
	"testing"

	"mercator-hq/argus/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("disabled tracer reports Enabled() = true")
	}

	// Noop spans must still be usable.
	ctx, span := tracer.Start(context.Background(), "test-span")
	if ctx == nil {
		t.Error("Start() returned nil context")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		ratio   float64
		wantErr bool
	}{
		{name: "always", sampler: "always"},
		{name: "empty defaults to always", sampler: ""},
		{name: "never", sampler: "never"},
		{name: "ratio", sampler: "ratio", ratio: 0.25},
		{name: "unknown", sampler: "probabilistic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createSampler(tt.sampler, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && s == nil {
				t.Error("createSampler() returned nil sampler")
			}
		})
	}
}

func TestCreateExporter_Unimplemented(t *testing.T) {
	for _, exporter := range []string{"jaeger", "zipkin"} {
		t.Run(exporter, func(t *testing.T) {
			_, err := createExporter(config.TracingConfig{Exporter: exporter})
			if err == nil {
				t.Fatal("expected error for unimplemented exporter")
			}
			if !strings.Contains(err.Error(), "not yet implemented") {
				t.Errorf("error = %v, want mention of not yet implemented", err)
			}
		})
	}

	if _, err := createExporter(config.TracingConfig{Exporter: "stdout"}); err == nil {
		t.Error("expected error for unsupported exporter")
	}
}
