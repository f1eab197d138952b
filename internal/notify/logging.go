package notify

import (
	"context"
	"log"
)

// LogNotifier writes notification intents to the process log. Used when no
// webhook is configured so notification decisions stay observable.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Printf("notify: recipient=%s kind=%s body=%q", msg.RecipientID, msg.Kind, msg.Body)
	return nil
}
