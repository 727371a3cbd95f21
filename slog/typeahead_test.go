package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/mock"
	relayslog "github.com/fwojciec/tabrelay/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingTypeahead_Submit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	var typed string
	inner := &mock.Typeahead{
		SubmitFn: func(ctx context.Context, query string) error {
			typed = query
			return nil
		},
	}

	ta := relayslog.NewLoggingTypeahead(inner, logger)
	err := ta.Submit(context.Background(), "nirvana")

	require.NoError(t, err)
	assert.Equal(t, "nirvana", typed)
	output := buf.String()
	assert.Contains(t, output, "suggest lookup")
	assert.Contains(t, output, "query=nirvana")
	assert.Contains(t, output, "duration=")
}

func TestLoggingTypeahead_Clear(t *testing.T) {
	t.Parallel()

	t.Run("silent on success", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Typeahead{ClearFn: func(ctx context.Context) error { return nil }}

		err := relayslog.NewLoggingTypeahead(inner, logger).Clear(context.Background())

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("returns failure without logging it", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Typeahead{ClearFn: func(ctx context.Context) error { return errors.New("detached") }}

		err := relayslog.NewLoggingTypeahead(inner, logger).Clear(context.Background())

		require.EqualError(t, err, "detached")
		assert.Empty(t, buf.String())
	})
}

func TestLoggingTypeahead_Events(t *testing.T) {
	t.Parallel()

	ch := make(chan tabrelay.SuggestionEvent)
	inner := &mock.Typeahead{EventsFn: func() <-chan tabrelay.SuggestionEvent { return ch }}

	ta := relayslog.NewLoggingTypeahead(inner, slog.New(slog.DiscardHandler))

	assert.Equal(t, (<-chan tabrelay.SuggestionEvent)(ch), ta.Events())
}
