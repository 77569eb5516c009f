package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/service"
)

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	t.Run("retries busy errors until success", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: ErrDatabaseBusy, Retryable: true}
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns permanent errors immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrNotFound
		}, opts)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrDatabaseBusy
		}, opts)

		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrDatabaseBusy)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := WithRetry(ctx, func() error { return ErrDatabaseBusy }, opts)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrDatabaseBusy))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: ErrDatabaseBusy, Retryable: false}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(ErrInvalidRule))
}

func TestUserError(t *testing.T) {
	err := NewUserError("category not found", ErrNotFound)
	assert.Equal(t, "category not found: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))
	slog.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"k":"v"`)

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "Rahul Sharma", TitleCase("RAHUL sharma"))
	assert.Equal(t, "a b c", CollapseSpaces("  a \t b\n c "))

	kw, ok := FirstContained("paid house rent", []string{"salary", "rent"})
	assert.True(t, ok)
	assert.Equal(t, "rent", kw)
	assert.False(t, ContainsAny("groceries", []string{"rent"}))
	assert.True(t, ContainsWord("amazon india", "amazon"))
	assert.True(t, ContainsWord("amazon.in/order", "amazon"))
	assert.False(t, ContainsWord("amazonia traders", "amazon"))
}
