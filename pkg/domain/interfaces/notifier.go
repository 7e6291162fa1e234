package interfaces

import "context"

// Notifier posts a plain text message to a chat channel
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
