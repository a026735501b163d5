package app

import (
	"context"
	"time"

	"vestnik/internal/transport"
	"vestnik/pkg/logx"
)

// handleTimeout bounds the work done for one update so a stuck Telegram
// call cannot stall the whole loop.
const handleTimeout = 15 * time.Second

// dispatch consumes updates sequentially. Ordering matters: a user's
// messages must hit the conversation engine in the order they arrived.
func (a *App) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up := <-a.updates:
			a.handle(ctx, up)
		}
	}
}

func (a *App) handle(ctx context.Context, up transport.Update) {
	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch up.Kind {
	case transport.UpdateMessage:
		msg := up.Message
		if msg == nil || msg.IsGroup {
			// Group chatter is not part of the submission dialogue.
			return
		}
		a.engine.HandleMessage(hctx, msg)

	case transport.UpdateCallback:
		cb := up.Callback
		if cb == nil {
			return
		}
		// Moderation answers its own callbacks; everything else gets a
		// plain ack so the button stops spinning.
		if a.mod.HandleCallback(hctx, cb) {
			return
		}
		if !a.engine.HandleCallback(hctx, cb) {
			a.log.Debug("unknown callback", logx.String("data", cb.Data))
		}
		if err := a.adapter.AnswerCallback(hctx, cb.ID, ""); err != nil {
			a.log.Debug("callback ack failed", logx.Err(err))
		}
	}
}
