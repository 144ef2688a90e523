package gate

import (
	"context"

	"github.com/arloliu/solo/internal/backoff"
	"github.com/arloliu/solo/types"
)

func backoffRetry(ctx context.Context, o options, ch types.InboundChannel) error {
	attempt := 0

	return backoff.Retry(ctx, o.retry, func(ctx context.Context) error {
		attempt++
		err := ch.Resume(ctx)
		if err != nil && attempt < o.retry.Attempts {
			o.logger.Debug("retrying inbound channel resume", "channel", ch.Name(), "attempt", attempt, "error", err)
		}

		return err
	})
}
