package event

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Violations maps a payload field to the first human-readable reason it was
// rejected. The engine accumulates one entry per violated field instead of
// short-circuiting so a client can render every error at once.
type Violations map[string]string

func (v Violations) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v Violations) Empty() bool {
	return len(v) == 0
}

var Categories = []string{
	"Webinar", "Workshop", "Conference", "Social Event", "Concert", "Meetup", "Exhibition",
}

var TicketTypes = []string{"Free", "Paid", "Donation", "VIP"}

var (
	emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	linkPattern  = regexp.MustCompile(`^https?://.*`)
)

// Accepted date shapes, RFC3339 first since that is what the frontend sends.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type textRule struct {
	field    string
	label    string
	min, max int
}

var textRules = []textRule{
	{"eventName", "Event name", 3, 100},
	{"eventDescription", "Event description", 10, 2000},
	{"venueName", "Venue name", 2, 100},
	{"venueAddress", "Venue address", 5, 200},
	{"organizerName", "Organizer name", 2, 50},
}

// ValidateCreate checks an untyped payload purportedly representing a full
// event. It never fails hard on malformed input: wrong types, bad dates and
// out-of-range values all land in the returned Violations. The Event is only
// meaningful when the violations are empty.
func ValidateCreate(payload map[string]any) (Event, Violations) {
	v := Violations{}
	var e Event

	for _, r := range textRules {
		s, ok := checkText(payload[r.field], v, r)
		if ok {
			setText(&e, r.field, s)
		}
	}

	if c, ok := checkEnum(payload["eventCategory"], v, "eventCategory", "Event category", "Please select a valid category", Categories); ok {
		e.EventCategory = c
	}
	if tt, ok := checkEnum(payload["ticketType"], v, "ticketType", "Ticket type", "Please select a valid ticket type", TicketTypes); ok {
		e.TicketType = tt
	}

	start, startOK := checkDate(payload["startDate"], v, "startDate", "Start date")
	end, endOK := checkDate(payload["endDate"], v, "endDate", "End date")
	if startOK {
		e.StartDate = start
	}
	if endOK {
		e.EndDate = end
	}
	if startOK && endOK && end.Before(start) {
		v.add("endDate", "End date must be after start date")
	}

	if link, ok, supplied := checkLink(payload["onlineEventLink"], v); supplied && ok {
		e.OnlineEventLink = link
	}

	if contact, ok := checkContact(payload["organizerContact"], v); ok {
		e.OrganizerContact = contact
	}

	if price, ok := checkPrice(payload["ticketPrice"], v); ok {
		e.TicketPrice = price
	}

	if att, ok := checkAttendees(payload["maxAttendees"], v); ok {
		e.MaxAttendees = att
	}

	return e, v
}

// ValidateUpdate checks a partial payload against the same per-field rules.
// Fields absent from the payload are left untouched and contribute nothing,
// except that touching either date re-evaluates ordering against the
// effective pair: the supplied value for the touched side, the stored value
// for the other.
func ValidateUpdate(existing Event, payload map[string]any) (EventPatch, Violations) {
	v := Violations{}
	var p EventPatch

	for _, r := range textRules {
		raw, supplied := payload[r.field]
		if !supplied {
			continue
		}
		if s, ok := checkText(raw, v, r); ok {
			setPatchText(&p, r.field, s)
		}
	}

	if raw, supplied := payload["eventCategory"]; supplied {
		if c, ok := checkEnum(raw, v, "eventCategory", "Event category", "Please select a valid category", Categories); ok {
			p.EventCategory = &c
		}
	}
	if raw, supplied := payload["ticketType"]; supplied {
		if tt, ok := checkEnum(raw, v, "ticketType", "Ticket type", "Please select a valid ticket type", TicketTypes); ok {
			p.TicketType = &tt
		}
	}

	if raw, supplied := payload["startDate"]; supplied {
		if t, ok := checkDate(raw, v, "startDate", "Start date"); ok {
			p.StartDate = &t
		}
	}
	if raw, supplied := payload["endDate"]; supplied {
		if t, ok := checkDate(raw, v, "endDate", "End date"); ok {
			p.EndDate = &t
		}
	}

	// Ordering is only re-checked when a date was touched; untouched pairs
	// were already ordered at creation or the last update.
	if p.StartDate != nil || p.EndDate != nil {
		effStart, effEnd := existing.StartDate, existing.EndDate
		if p.StartDate != nil {
			effStart = *p.StartDate
		}
		if p.EndDate != nil {
			effEnd = *p.EndDate
		}
		if effEnd.Before(effStart) {
			v.add("endDate", "End date must be after start date")
		}
	}

	if raw, supplied := payload["onlineEventLink"]; supplied {
		if link, ok, _ := checkLink(raw, v); ok {
			p.OnlineEventLink = &link
		}
	}

	if raw, supplied := payload["organizerContact"]; supplied {
		if contact, ok := checkContact(raw, v); ok {
			p.OrganizerContact = &contact
		}
	}

	if raw, supplied := payload["ticketPrice"]; supplied {
		if price, ok := checkPrice(raw, v); ok {
			p.TicketPrice = &price
		}
	}

	if raw, supplied := payload["maxAttendees"]; supplied {
		if att, ok := checkAttendees(raw, v); ok {
			p.MaxAttendees = &att
		}
	}

	return p, v
}

func checkText(raw any, v Violations, r textRule) (string, bool) {
	s, ok := asString(raw)
	if !ok {
		if raw == nil {
			v.add(r.field, r.label+" is required")
		} else {
			v.add(r.field, r.label+" must be text")
		}
		return "", false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		v.add(r.field, r.label+" is required")
		return "", false
	}

	n := utf8.RuneCountInString(s)
	if n < r.min {
		v.add(r.field, r.label+" must be at least "+strconv.Itoa(r.min)+" characters")
		return "", false
	}
	if n > r.max {
		v.add(r.field, r.label+" cannot exceed "+strconv.Itoa(r.max)+" characters")
		return "", false
	}

	return s, true
}

func checkEnum(raw any, v Violations, field, label, badValueMsg string, allowed []string) (string, bool) {
	s, ok := asString(raw)
	if !ok || strings.TrimSpace(s) == "" {
		v.add(field, label+" is required")
		return "", false
	}

	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}

	v.add(field, badValueMsg)
	return "", false
}

func checkDate(raw any, v Violations, field, label string) (time.Time, bool) {
	if raw == nil {
		v.add(field, label+" is required")
		return time.Time{}, false
	}

	// Payloads built in-process may already carry a time.Time.
	if t, ok := raw.(time.Time); ok {
		return t, true
	}

	s, ok := asString(raw)
	if !ok || strings.TrimSpace(s) == "" {
		v.add(field, label+" must be a valid date")
		return time.Time{}, false
	}

	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	v.add(field, label+" must be a valid date")
	return time.Time{}, false
}

func checkLink(raw any, v Violations) (link string, ok bool, supplied bool) {
	if raw == nil {
		return "", false, false
	}

	s, isString := asString(raw)
	s = strings.TrimSpace(s)
	if !isString || (s != "" && !linkPattern.MatchString(s)) {
		v.add("onlineEventLink", "Online event link must be a valid URL")
		return "", false, true
	}

	return s, true, true
}

func checkContact(raw any, v Violations) (string, bool) {
	s, ok := asString(raw)
	if !ok || strings.TrimSpace(s) == "" {
		v.add("organizerContact", "Organizer contact is required")
		return "", false
	}

	s = strings.TrimSpace(s)
	if !emailPattern.MatchString(s) && !phonePattern.MatchString(s) {
		v.add("organizerContact", "Organizer contact must be a valid email or 10-digit phone number")
		return "", false
	}

	return s, true
}

func checkPrice(raw any, v Violations) (float64, bool) {
	if raw == nil {
		v.add("ticketPrice", "Ticket price is required")
		return 0, false
	}

	f, ok := asNumber(raw)
	if !ok {
		v.add("ticketPrice", "Ticket price must be a number")
		return 0, false
	}
	if f < 0 {
		v.add("ticketPrice", "Ticket price cannot be negative")
		return 0, false
	}

	return f, true
}

func checkAttendees(raw any, v Violations) (int, bool) {
	if raw == nil {
		v.add("maxAttendees", "Maximum attendees is required")
		return 0, false
	}

	f, ok := asNumber(raw)
	if !ok {
		v.add("maxAttendees", "Maximum attendees must be a number")
		return 0, false
	}
	if f != math.Trunc(f) {
		v.add("maxAttendees", "Maximum attendees must be a positive integer")
		return 0, false
	}
	if f < 1 {
		v.add("maxAttendees", "Maximum attendees must be at least 1")
		return 0, false
	}

	return int(f), true
}

func asString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

// asNumber accepts the shapes a JSON decoder can hand us plus numeric
// strings, which the engine coerces rather than rejects.
func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func setText(e *Event, field, s string) {
	switch field {
	case "eventName":
		e.EventName = s
	case "eventDescription":
		e.EventDescription = s
	case "venueName":
		e.VenueName = s
	case "venueAddress":
		e.VenueAddress = s
	case "organizerName":
		e.OrganizerName = s
	}
}

func setPatchText(p *EventPatch, field, s string) {
	v := s
	switch field {
	case "eventName":
		p.EventName = &v
	case "eventDescription":
		p.EventDescription = &v
	case "venueName":
		p.VenueName = &v
	case "venueAddress":
		p.VenueAddress = &v
	case "organizerName":
		p.OrganizerName = &v
	}
}
