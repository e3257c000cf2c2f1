// Package notify is the boundary to the host's notification primitive.
package notify

import (
	"context"
	"log"
)

// Notifier informs an account identity that an operation affecting them
// occurred. Delivery is best-effort; ledger operations never fail on a
// notification error.
type Notifier interface {
	Notify(ctx context.Context, account, message string) error
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// Notify logs the notification.
func (LogNotifier) Notify(ctx context.Context, account, message string) error {
	log.Printf("notify %s: %s", account, message)
	return nil
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, account, message string) error

// Notify calls the wrapped function.
func (f Func) Notify(ctx context.Context, account, message string) error {
	return f(ctx, account, message)
}

var _ Notifier = LogNotifier{}
var _ Notifier = Func(nil)
