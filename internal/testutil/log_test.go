package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscardLogger(t *testing.T) {
	l := DiscardLogger()
	assert.NotNil(t, l)
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	l.Info("dropped")
}
