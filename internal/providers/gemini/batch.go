package gemini

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/infra"
)

// batchInterval paces the concurrent calls of one batch so a burst of
// variations does not trip the upstream quota. Burst 2 lets the first two
// requests start immediately.
const batchInterval = 500 * time.Millisecond

// ErrBatchEmpty indicates that every call in a batch finished without an
// image.
var ErrBatchEmpty = errors.New("no images were produced by the batch")

// Batcher fans one generation request out into independent concurrent calls
// sharing a rate limiter.
type Batcher struct {
	client  *Client
	limiter *rate.Limiter
	logger  *infra.Logger
}

// NewBatcher wraps a client for batch generation. A nil logger falls back to
// the client's own.
func NewBatcher(client *Client, logger *infra.Logger) *Batcher {
	if logger == nil {
		logger = client.logger
	}
	return &Batcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(batchInterval), 2),
		logger:  logger,
	}
}

// GenerateBatch issues count independent Generate calls with identical input
// and collects the images that survive, in completion order. Members that
// fail or come back imageless are dropped with a warning; the batch as a
// whole fails only when none of them produced an image. No upper bound on
// count is enforced here.
func (b *Batcher) GenerateBatch(ctx context.Context, instruction string, images []asset.Image, count int) ([]asset.Image, error) {
	if count < 1 {
		count = 1
	}

	var (
		mu        sync.Mutex
		collected []asset.Image
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		call := i + 1
		eg.Go(func() error {
			if err := b.limiter.Wait(egCtx); err != nil {
				return err
			}

			result, err := b.client.Generate(egCtx, instruction, images)
			if err != nil {
				b.logger.Warn().Err(err).Int("call", call).Msg("gemini: batch member failed")
				return nil
			}
			if result.Image == nil {
				b.logger.Warn().Int("call", call).Msg("gemini: batch member returned no image")
				return nil
			}

			mu.Lock()
			collected = append(collected, *result.Image)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(collected) == 0 {
		return nil, ErrBatchEmpty
	}
	return collected, nil
}
