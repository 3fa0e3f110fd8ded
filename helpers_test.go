package fantasiad

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mdouchement/logger"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	h := logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{
		Level: slog.LevelDebug,
	})
	return logger.WithLogger(context.Background(), logger.WrapSlogHandler(h))
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timeout waiting on channel")
	}

	var zero T
	return zero
}
