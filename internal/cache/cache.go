package cache

import "context"

// EventCache remembers processor event ids that were already reconciled.
type EventCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}
