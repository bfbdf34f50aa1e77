package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/eventdesk/internal/domain/event"
	"github.com/geocoder89/eventdesk/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventsRepo struct {
	col     *mongo.Collection
	metrics *observability.Prom
}

// constructor function

func NewEventsRepo(database *mongo.Database, metrics *observability.Prom) *EventsRepo {
	return &EventsRepo{
		col:     database.Collection("events"),
		metrics: metrics,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *EventsRepo) List(ctx context.Context) ([]event.Event, error) {
	// empty slice, not nil: an empty collection is a valid result
	out := make([]event.Event, 0)

	err := r.observe("events.list", func() error {
		cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))

		if err != nil {
			return err
		}

		return cursor.All(ctx, &out)
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *EventsRepo) GetByName(ctx context.Context, name string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_name", func() error {
		return r.col.FindOne(ctx, bson.M{"eventName": name}).Decode(&e)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

// Create inserts a validated event. Name uniqueness is enforced by the
// unique index as an atomic part of the insert; the index failure is
// translated to ErrDuplicateName instead of propagating as a generic fault.
func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now

	err := r.observe("events.create", func() error {
		_, err := r.col.InsertOne(ctx, e)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return event.Event{}, event.ErrDuplicateName
		}

		return event.Event{}, err
	}

	return e, nil
}

// Update writes only the supplied fields and returns the resulting full
// document. Renaming onto an existing name trips the unique index the same
// way a duplicate create does.
func (r *EventsRepo) Update(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
	set := setDocument(patch)
	set["updatedAt"] = time.Now().UTC()

	var updated event.Event

	err := r.observe("events.update", func() error {
		return r.col.FindOneAndUpdate(
			ctx,
			bson.M{"eventName": name},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return event.Event{}, event.ErrDuplicateName
		}

		return event.Event{}, err
	}

	return updated, nil
}

func (r *EventsRepo) Delete(ctx context.Context, name string) (event.Event, error) {
	var deleted event.Event

	err := r.observe("events.delete", func() error {
		return r.col.FindOneAndDelete(ctx, bson.M{"eventName": name}).Decode(&deleted)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return deleted, nil
}

func setDocument(patch event.EventPatch) bson.M {
	set := bson.M{}

	if patch.EventName != nil {
		set["eventName"] = *patch.EventName
	}
	if patch.EventCategory != nil {
		set["eventCategory"] = *patch.EventCategory
	}
	if patch.EventDescription != nil {
		set["eventDescription"] = *patch.EventDescription
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.VenueName != nil {
		set["venueName"] = *patch.VenueName
	}
	if patch.VenueAddress != nil {
		set["venueAddress"] = *patch.VenueAddress
	}
	if patch.OnlineEventLink != nil {
		set["onlineEventLink"] = *patch.OnlineEventLink
	}
	if patch.OrganizerName != nil {
		set["organizerName"] = *patch.OrganizerName
	}
	if patch.OrganizerContact != nil {
		set["organizerContact"] = *patch.OrganizerContact
	}
	if patch.TicketPrice != nil {
		set["ticketPrice"] = *patch.TicketPrice
	}
	if patch.TicketType != nil {
		set["ticketType"] = *patch.TicketType
	}
	if patch.MaxAttendees != nil {
		set["maxAttendees"] = *patch.MaxAttendees
	}

	return set
}
