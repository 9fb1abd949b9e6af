package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.With("component", "rsa").Info(context.Background(), "key generated", "bits", 2048, Redacted("d"))
	out := buf.String()
	assert.Contains(t, out, "key generated")
	assert.Contains(t, out, "component=rsa")
	assert.Contains(t, out, "bits=2048")
	assert.Contains(t, out, "d="+Placeholder())
}

func TestOrDiscard(t *testing.T) {
	l := OrDiscard(nil)
	assert.NotPanics(t, func() {
		l.With("a", 1).Error(context.Background(), "dropped")
	})

	custom := New(nil)
	assert.Equal(t, custom, OrDiscard(custom))
}
