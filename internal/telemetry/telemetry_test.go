package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutEndpoint(t *testing.T) {
	p, err := New(context.Background(), &Config{})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Nil(t, p.tracerProvider)
	assert.Nil(t, p.meterProvider)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNoop_InstrumentationIsSafe(t *testing.T) {
	p := Noop()
	ctx := context.Background()

	runCtx, endRun := p.StartRun(ctx, "sheet-1", 0, true)
	_, done := p.TrackBlock(runCtx, "block-1", 0)
	done(errors.New("boom"))
	_, done = p.TrackBlock(runCtx, "block-2", 1)
	done(nil)
	p.RecordSkip(runCtx, "skip_independent")
	endRun()
}

func TestConfig_Enabled(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.Enabled())
	assert.False(t, (&Config{}).Enabled())
	assert.True(t, (&Config{OTLPEndpoint: "localhost:4317"}).Enabled())
}
