package push

import (
	"context"

	"github.com/enigmahunt/enigmahunt/internal/services/notify"
)

// Noop is a Sender for deployments without a push provider configured
type Noop struct{}

var _ notify.Sender = Noop{}

// Send discards the notification
func (Noop) Send(ctx context.Context, tokens []string, n notify.Notification) error {
	return nil
}
