package notify

import (
	"context"
	"errors"
)

type multiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier fans a message out to every notifier. All notifiers are
// attempted even when earlier ones fail; errors are joined.
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	filtered := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	return multiNotifier{notifiers: filtered}
}

func (m multiNotifier) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
