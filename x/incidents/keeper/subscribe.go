package keeper

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/TrustedSmartChain/walletcore/client"
	"github.com/TrustedSmartChain/walletcore/x/incidents/types"
)

// Subscribe runs a sync pass for req whenever the event source reports a
// matching transaction. Failed passes are logged and retried on the next
// event. It returns when ctx is done or the stream ends.
func (k *Keeper) Subscribe(ctx context.Context, source types.EventSource, req types.SyncRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	query := types.SubscribeTxQuery + " AND " + req.Query()
	events, err := source.Subscribe(ctx, query)
	if err != nil {
		return err
	}

	for ev := range events {
		k.logger.Debug("tx event", "hash", ev.Hash, "key", req.SyncKey())
		if _, err := k.Sync(ctx, req); err != nil {
			k.logger.Error("event triggered sync failed", "hash", ev.Hash, "err", err)
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return client.ErrSubscription.Wrapf("stream for %q closed", query)
}

// SubscribeAll subscribes every request on its own stream.
func (k *Keeper) SubscribeAll(ctx context.Context, source types.EventSource, reqs []types.SyncRequest) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, req := range reqs {
		g.Go(func() error {
			return k.Subscribe(ctx, source, req)
		})
	}
	return g.Wait()
}
