// Package worker runs the asynchronous account refresh consumer. It keeps
// slow upstream refresh calls off the read path: the API publishes a
// trigger and returns immediately, the worker performs the actual call.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"networth/internal/amqp"
	"networth/internal/provider"
)

// RefreshConsumer delivers account refresh messages until the context is
// cancelled.
type RefreshConsumer interface {
	ConsumeAccountRefresh(ctx context.Context, handler func(context.Context, *amqp.AccountRefreshMessage) error) error
}

// RefreshWorker consumes refresh triggers and performs the upstream
// subscribe or refresh call for each.
type RefreshWorker struct {
	consumer  RefreshConsumer
	refresher provider.AccountRefresher
}

func NewRefreshWorker(consumer RefreshConsumer, refresher provider.AccountRefresher) *RefreshWorker {
	return &RefreshWorker{
		consumer:  consumer,
		refresher: refresher,
	}
}

// Start blocks consuming refresh messages until ctx is cancelled.
func (w *RefreshWorker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting refresh worker")
	return w.consumer.ConsumeAccountRefresh(ctx, w.handle)
}

func (w *RefreshWorker) handle(ctx context.Context, msg *amqp.AccountRefreshMessage) error {
	if msg.Subscribe {
		if err := w.refresher.Subscribe(ctx, msg.AccountID, msg.Features); err != nil {
			return fmt.Errorf("subscribe account %s: %w", msg.AccountID, err)
		}
		slog.InfoContext(ctx, "Account subscribed",
			"account_id", msg.AccountID,
			"features", msg.Features)
		return nil
	}

	if err := w.refresher.Refresh(ctx, msg.AccountID, msg.Features); err != nil {
		return fmt.Errorf("refresh account %s: %w", msg.AccountID, err)
	}
	slog.InfoContext(ctx, "Account refresh triggered",
		"account_id", msg.AccountID,
		"features", msg.Features)
	return nil
}
