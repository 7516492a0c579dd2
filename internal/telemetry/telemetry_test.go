package telemetry_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbertoRoca-web/pup-sdk/internal/config"
	"github.com/AlbertoRoca-web/pup-sdk/internal/telemetry"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	for name, cfg := range map[string]config.TelemetryConfig{
		"disabled":    {Enabled: false, OTLPEndpoint: "localhost:4317"},
		"no endpoint": {Enabled: true},
	} {
		t.Run(name, func(t *testing.T) {
			shutdown, err := telemetry.Setup(context.Background(), cfg, "0.1.0")
			require.NoError(t, err)
			require.NotNil(t, shutdown)
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, telemetry.SampleRatio(tt.in), "ratio %v", tt.in)
	}
}
