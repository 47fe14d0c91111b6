package kafka

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/common/models"
)

func init() {
	logger.Silence()
}

func TestConsumeStopsWhenReaderClosed(t *testing.T) {
	consumer := NewConsumer("trial-corpus-test", "trialmatch-test")
	require.NoError(t, consumer.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := 0
	err := consumer.Consume(ctx, func(context.Context, models.Event) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, calls)
}
