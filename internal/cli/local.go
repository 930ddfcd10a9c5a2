package cli

import (
	"context"
	"sync"
	"time"

	"staffgrid/internal/model"
	"staffgrid/internal/store"
	"staffgrid/internal/week"
)

// localBackend lets the grid run straight off the on-disk store when no
// server address is configured. Writes carry the session's origin so the
// local event loop can tell echoes from other windows' edits.
type localBackend struct {
	st     store.Store
	origin string
}

func (b *localBackend) Snapshot(ctx context.Context, department string, weeks int) (*model.Snapshot, error) {
	return b.st.Snapshot(ctx, department, week.Horizon(time.Now(), weeks))
}

func (b *localBackend) SetHours(ctx context.Context, assignmentID, weekKey string, hours float64) (model.Assignment, error) {
	return b.st.SetHours(ctx, assignmentID, weekKey, hours, b.origin)
}

func (b *localBackend) SetHoursBulk(ctx context.Context, cells []model.CellRef, hours float64) ([]model.Assignment, error) {
	return b.st.SetHoursBulk(ctx, cells, hours, b.origin)
}

func (b *localBackend) Assignment(ctx context.Context, id string) (model.Assignment, error) {
	return b.st.GetAssignment(ctx, id)
}

const localPollInterval = 500 * time.Millisecond

// localEvents tails the store's change log into an event channel, so a grid
// over the local store still sees edits from other processes on the same
// data dir (a second TUI window, scripted assignment writes).
func localEvents(st store.Store) (<-chan model.ChangeEvent, func()) {
	ch := make(chan model.ChangeEvent, 64)
	stop := make(chan struct{})

	go func() {
		defer close(ch)

		ctx := context.Background()
		cursor, err := st.LastChangeSeq(ctx)
		if err != nil {
			return
		}
		ticker := time.NewTicker(localPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			changes, err := st.ChangesSince(ctx, cursor, 500)
			if err != nil {
				continue
			}
			for _, c := range changes {
				cursor = c.Seq
				select {
				case ch <- c.Event:
				case <-stop:
					return
				}
			}
		}
	}()

	var once sync.Once
	return ch, func() { once.Do(func() { close(stop) }) }
}
