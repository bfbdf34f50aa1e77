package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/event"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventsRepo is a drop-in stand-in for the mongodb gateway. It enforces the
// same contract: name uniqueness, partial merge on update, NotFound and
// DuplicateName as sentinel errors.
type EventsRepo struct {
	mu    sync.RWMutex
	items map[string]event.Event // keyed by eventName
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		items: make(map[string]event.Event),
	}
}

func (r *EventsRepo) List(ctx context.Context) ([]event.Event, error) {
	r.mu.RLock()
	out := make([]event.Event, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})

	return out, nil
}

func (r *EventsRepo) GetByName(ctx context.Context, name string) (event.Event, error) {
	r.mu.RLock()
	e, ok := r.items[name]
	r.mu.RUnlock()

	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[e.EventName]; exists {
		return event.Event{}, event.ErrDuplicateName
	}

	r.items[e.EventName] = e

	return e, nil
}

func (r *EventsRepo) Update(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[name]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	updated := patch.Apply(existing)
	updated.UpdatedAt = time.Now().UTC()

	// a rename must not collide with another stored event
	if updated.EventName != name {
		if _, taken := r.items[updated.EventName]; taken {
			return event.Event{}, event.ErrDuplicateName
		}
		delete(r.items, name)
	}

	r.items[updated.EventName] = updated

	return updated, nil
}

func (r *EventsRepo) Delete(ctx context.Context, name string) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[name]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}

	delete(r.items, name)

	return e, nil
}
