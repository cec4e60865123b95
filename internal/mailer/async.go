package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Async dispatches notifications on background goroutines so requests never
// wait on mail delivery. Failures are logged and dropped.
type Async struct {
	next Notifier
	log  *zap.SugaredLogger
	wg   sync.WaitGroup
}

// NewAsync wraps next.
func NewAsync(next Notifier, log *zap.SugaredLogger) *Async {
	return &Async{next: next, log: log}
}

func (a *Async) SendVerification(ctx context.Context, name, email, code string) error {
	a.dispatch(ctx, "verification", email, func(ctx context.Context) error {
		return a.next.SendVerification(ctx, name, email, code)
	})
	return nil
}

func (a *Async) SendVerified(ctx context.Context, name, email string) error {
	a.dispatch(ctx, "verified", email, func(ctx context.Context) error {
		return a.next.SendVerified(ctx, name, email)
	})
	return nil
}

func (a *Async) SendPasswordReset(ctx context.Context, email, code string) error {
	a.dispatch(ctx, "password_reset", email, func(ctx context.Context) error {
		return a.next.SendPasswordReset(ctx, email, code)
	})
	return nil
}

// Wait blocks until every dispatched notification has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

func (a *Async) dispatch(ctx context.Context, kind, email string, send func(context.Context) error) {
	// Detach from the request so delivery outlives the response.
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := send(ctx); err != nil {
			a.log.Errorw("failed to send email",
				"kind", kind,
				"to", email,
				"error", err,
			)
		}
	}()
}
