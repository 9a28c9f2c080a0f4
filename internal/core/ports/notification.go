package ports

import "context"

// NotificationSender dispatches emails carrying a single-use code. Only the
// call contract is in scope here; delivery guarantees belong to the provider.
type NotificationSender interface {
	SendConfirmationEmail(ctx context.Context, email, code string) error
	SendRecoveryEmail(ctx context.Context, email, code string) error
}

// EmailDispatcher enqueues a confirmation email for asynchronous delivery.
// Used on the registration path, where a send failure must not surface to the
// caller.
type EmailDispatcher interface {
	EnqueueConfirmation(email, code string)
}
