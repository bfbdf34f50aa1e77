package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/event"
)

func sampleEvent(name string, start time.Time) event.Event {
	return event.Event{
		EventName:        name,
		EventCategory:    "Conference",
		EventDescription: "An evening of product demos and talks.",
		StartDate:        start,
		EndDate:          start.Add(4 * time.Hour),
		VenueName:        "Main Hall",
		VenueAddress:     "1 Harbour Street, Dockside",
		OrganizerName:    "Events Team",
		OrganizerContact: "team@example.com",
		TicketPrice:      25,
		TicketType:       "Paid",
		MaxAttendees:     200,
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected a generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := repo.GetByName(ctx, "Launch Night")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got id %v, want %v", got.ID, created.ID)
	}

	// reads do not mutate: a second lookup returns the identical document
	again, err := repo.GetByName(ctx, "Launch Night")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again != got {
		t.Errorf("repeated get changed the document: %+v vs %+v", again, got)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC())); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC()))
	if !errors.Is(err, event.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}

	// the losing insert must not clobber or duplicate the stored document
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one stored event, got %d", len(all))
	}
}

func TestGetByNameNotFound(t *testing.T) {
	repo := NewEventsRepo()

	_, err := repo.GetByName(context.Background(), "nope")
	if !errors.Is(err, event.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSortsByStartDate(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	for _, e := range []event.Event{
		sampleEvent("Third", base.Add(48 * time.Hour)),
		sampleEvent("First", base),
		sampleEvent("Second", base.Add(24 * time.Hour)),
	} {
		if _, err := repo.Create(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.EventName, err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"First", "Second", "Third"}
	for i, name := range want {
		if all[i].EventName != name {
			t.Fatalf("list order = %v, want %v", names(all), want)
		}
	}
}

func names(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventName
	}
	return out
}

func TestListEmptyReturnsEmptySlice(t *testing.T) {
	repo := NewEventsRepo()

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", all)
	}
}

func TestUpdateMergesOnlyPatchedFields(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	venue := "Annex Hall"
	price := 30.0
	updated, err := repo.Update(ctx, "Launch Night", event.EventPatch{
		VenueName:   &venue,
		TicketPrice: &price,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.VenueName != "Annex Hall" || updated.TicketPrice != 30 {
		t.Errorf("patched fields not applied: %+v", updated)
	}
	if updated.EventName != created.EventName ||
		updated.EventDescription != created.EventDescription ||
		!updated.StartDate.Equal(created.StartDate) ||
		updated.MaxAttendees != created.MaxAttendees {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed on update")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("updatedAt not refreshed")
	}
}

func TestUpdateRenameMovesDocument(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Launch Night v2"
	if _, err := repo.Update(ctx, "Launch Night", event.EventPatch{EventName: &newName}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := repo.GetByName(ctx, "Launch Night"); !errors.Is(err, event.ErrNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
	if _, err := repo.GetByName(ctx, "Launch Night v2"); err != nil {
		t.Errorf("new name does not resolve: %v", err)
	}
}

func TestUpdateRenameCollision(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, sampleEvent("Demo Day", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}

	taken := "Demo Day"
	_, err := repo.Update(ctx, "Launch Night", event.EventPatch{EventName: &taken})
	if !errors.Is(err, event.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := NewEventsRepo()

	venue := "Annex Hall"
	_, err := repo.Update(context.Background(), "nope", event.EventPatch{VenueName: &venue})
	if !errors.Is(err, event.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteEchoesRemovedDocument(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleEvent("Launch Night", time.Now().UTC()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := repo.Delete(ctx, "Launch Night")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted doc id %v, want %v", deleted.ID, created.ID)
	}

	if _, err := repo.GetByName(ctx, "Launch Night"); !errors.Is(err, event.ErrNotFound) {
		t.Errorf("document still present after delete: %v", err)
	}

	if _, err := repo.Delete(ctx, "Launch Night"); !errors.Is(err, event.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
