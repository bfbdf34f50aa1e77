package event

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is the single persisted entity: a schedulable happening with venue,
// ticketing and organizer metadata. Field names mirror the collection's
// document keys, which the frontend also uses verbatim.
type Event struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventName        string             `bson:"eventName" json:"eventName"`
	EventCategory    string             `bson:"eventCategory" json:"eventCategory"`
	EventDescription string             `bson:"eventDescription" json:"eventDescription"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"`
	EndDate          time.Time          `bson:"endDate" json:"endDate"`
	VenueName        string             `bson:"venueName" json:"venueName"`
	VenueAddress     string             `bson:"venueAddress" json:"venueAddress"`
	OnlineEventLink  string             `bson:"onlineEventLink,omitempty" json:"onlineEventLink,omitempty"`
	OrganizerName    string             `bson:"organizerName" json:"organizerName"`
	OrganizerContact string             `bson:"organizerContact" json:"organizerContact"`
	TicketPrice      float64            `bson:"ticketPrice" json:"ticketPrice"`
	TicketType       string             `bson:"ticketType" json:"ticketType"`
	MaxAttendees     int                `bson:"maxAttendees" json:"maxAttendees"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("event not found")
	ErrDuplicateName = errors.New("event name already in use")
)

// EventPatch carries the fields supplied in a partial update. A nil field
// means the caller did not touch it and the stored value survives.
type EventPatch struct {
	EventName        *string
	EventCategory    *string
	EventDescription *string
	StartDate        *time.Time
	EndDate          *time.Time
	VenueName        *string
	VenueAddress     *string
	OnlineEventLink  *string
	OrganizerName    *string
	OrganizerContact *string
	TicketPrice      *float64
	TicketType       *string
	MaxAttendees     *int
}

func (p EventPatch) IsZero() bool {
	return p.EventName == nil &&
		p.EventCategory == nil &&
		p.EventDescription == nil &&
		p.StartDate == nil &&
		p.EndDate == nil &&
		p.VenueName == nil &&
		p.VenueAddress == nil &&
		p.OnlineEventLink == nil &&
		p.OrganizerName == nil &&
		p.OrganizerContact == nil &&
		p.TicketPrice == nil &&
		p.TicketType == nil &&
		p.MaxAttendees == nil
}

// Apply merges the patch over a stored event and returns the result.
func (p EventPatch) Apply(e Event) Event {
	if p.EventName != nil {
		e.EventName = *p.EventName
	}
	if p.EventCategory != nil {
		e.EventCategory = *p.EventCategory
	}
	if p.EventDescription != nil {
		e.EventDescription = *p.EventDescription
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.VenueName != nil {
		e.VenueName = *p.VenueName
	}
	if p.VenueAddress != nil {
		e.VenueAddress = *p.VenueAddress
	}
	if p.OnlineEventLink != nil {
		e.OnlineEventLink = *p.OnlineEventLink
	}
	if p.OrganizerName != nil {
		e.OrganizerName = *p.OrganizerName
	}
	if p.OrganizerContact != nil {
		e.OrganizerContact = *p.OrganizerContact
	}
	if p.TicketPrice != nil {
		e.TicketPrice = *p.TicketPrice
	}
	if p.TicketType != nil {
		e.TicketType = *p.TicketType
	}
	if p.MaxAttendees != nil {
		e.MaxAttendees = *p.MaxAttendees
	}
	return e
}
