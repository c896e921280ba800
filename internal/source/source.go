package source

import (
	"context"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// Loader produces the complete batch of events for one report run.
// Implementations fail the whole batch on the first bad record.
type Loader interface {
	Load(ctx context.Context) ([]event.Event, error)
}
