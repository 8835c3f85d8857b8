package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// Mailer delivers a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg domain.Email) error
}

// MailQueue accepts messages for asynchronous delivery. Enqueue never blocks;
// it reports false when the message was dropped.
type MailQueue interface {
	Enqueue(msg domain.Email) bool
}
