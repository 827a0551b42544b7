package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	opts := CaptureOptions{URL: "http://127.0.0.1:8080/day.svg", OutputPath: "out.png"}
	require.NoError(t, opts.applyDefaults())
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, 30*time.Second, opts.Timeout)

	opts = CaptureOptions{URL: "u", OutputPath: "p", Width: 640, Height: 10, Timeout: time.Second}
	require.NoError(t, opts.applyDefaults())
	assert.Equal(t, 640, opts.Width)
	assert.Equal(t, 10, opts.Height)
	assert.Equal(t, time.Second, opts.Timeout)
}

func TestCaptureRequiresURLAndPath(t *testing.T) {
	assert.Error(t, CaptureDayPNG(context.Background(), CaptureOptions{OutputPath: "p"}))
	assert.Error(t, CaptureDayPNG(context.Background(), CaptureOptions{URL: "u"}))
}
