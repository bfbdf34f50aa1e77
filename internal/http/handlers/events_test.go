package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/eventdesk/internal/cache"
	"github.com/geocoder89/eventdesk/internal/domain/event"
	"github.com/gin-gonic/gin"
)

type fakeEventsStore struct {
	listFn   func(ctx context.Context) ([]event.Event, error)
	getFn    func(ctx context.Context, name string) (event.Event, error)
	createFn func(ctx context.Context, e event.Event) (event.Event, error)
	updateFn func(ctx context.Context, name string, patch event.EventPatch) (event.Event, error)
	deleteFn func(ctx context.Context, name string) (event.Event, error)
}

func (f *fakeEventsStore) List(ctx context.Context) ([]event.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeEventsStore) GetByName(ctx context.Context, name string) (event.Event, error) {
	return f.getFn(ctx, name)
}

func (f *fakeEventsStore) Create(ctx context.Context, e event.Event) (event.Event, error) {
	return f.createFn(ctx, e)
}

func (f *fakeEventsStore) Update(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
	return f.updateFn(ctx, name, patch)
}

func (f *fakeEventsStore) Delete(ctx context.Context, name string) (event.Event, error) {
	return f.deleteFn(ctx, name)
}

func newEventsRouter(store EventsStore, listCache *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewEventsHandler(store, listCache)
	ev := r.Group("/event")
	ev.GET("/getEvent", h.ListEvents)
	ev.GET("/getEvent/:eventName", h.GetEventByName)
	ev.POST("/addEvent", h.CreateEvent)
	ev.PATCH("/updateEvent/:eventName", h.UpdateEvent)
	ev.DELETE("/deleteEvent/:eventName", h.DeleteEvent)

	return r
}

func storedEvent() event.Event {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	return event.Event{
		EventName:        "Launch Night",
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

const createBody = `{
	"eventName": "Launch Night",
	"eventCategory": "Conference",
	"eventDescription": "An evening of product demos and talks.",
	"startDate": "2026-09-01T18:00:00Z",
	"endDate": "2026-09-01T22:00:00Z",
	"venueName": "Main Hall",
	"venueAddress": "1 Harbour Street, Dockside",
	"organizerName": "Events Team",
	"organizerContact": "team@example.com",
	"ticketPrice": 25,
	"ticketType": "Paid",
	"maxAttendees": 200
}`

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Error map[string]any `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	if body.Error == nil {
		t.Fatalf("no error envelope in %s", w.Body.String())
	}
	return body.Error
}

func TestListEventsReturnsEmptyArray(t *testing.T) {
	store := &fakeEventsStore{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return []event.Event{}, nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/event/getEvent", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestListEventsStoreFailure(t *testing.T) {
	store := &fakeEventsStore{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			return nil, errors.New("boom")
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/event/getEvent", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["code"] != "internal_error" {
		t.Errorf("code = %v", e["code"])
	}
}

func TestListEventsServesFromCacheAndSetsETag(t *testing.T) {
	calls := 0
	store := &fakeEventsStore{
		listFn: func(ctx context.Context) ([]event.Event, error) {
			calls++
			return []event.Event{storedEvent()}, nil
		},
	}
	listCache := cache.New(time.Minute)
	r := newEventsRouter(store, listCache)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/event/getEvent", nil))

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/event/getEvent", nil))

	if calls != 1 {
		t.Errorf("store hit %d times, want 1 (second read should come from cache)", calls)
	}

	// a revalidation with the current ETag gets a 304
	w3 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/event/getEvent", nil)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w3, req)

	if w3.Code != http.StatusNotModified {
		t.Errorf("revalidation status = %d, want 304", w3.Code)
	}
}

func TestGetEventByName(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			if name != "Launch Night" {
				return event.Event{}, event.ErrNotFound
			}
			return storedEvent(), nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/event/getEvent/Launch%20Night", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got event.Event
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EventName != "Launch Night" {
		t.Errorf("eventName = %q", got.EventName)
	}
}

func TestGetEventByNameNotFound(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return event.Event{}, event.ErrNotFound
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/event/getEvent/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["message"] != "Event not found" {
		t.Errorf("message = %v", e["message"])
	}
}

func TestCreateEvent(t *testing.T) {
	var stored event.Event
	store := &fakeEventsStore{
		createFn: func(ctx context.Context, e event.Event) (event.Event, error) {
			stored = e
			e.CreatedAt = time.Now().UTC()
			return e, nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/event/addEvent", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if stored.EventName != "Launch Night" || stored.MaxAttendees != 200 {
		t.Errorf("store received %+v", stored)
	}
}

func TestCreateEventValidationFailure(t *testing.T) {
	store := &fakeEventsStore{
		createFn: func(ctx context.Context, e event.Event) (event.Event, error) {
			t.Fatal("store must not be reached on validation failure")
			return event.Event{}, nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/event/addEvent", strings.NewReader(`{"eventName":"ab"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	e := decodeErrorBody(t, w)
	if e["code"] != "validation_failed" {
		t.Errorf("code = %v", e["code"])
	}

	details, _ := e["details"].(map[string]any)
	fields, _ := details["fields"].(map[string]any)
	if fields["eventName"] != "Event name must be at least 3 characters" {
		t.Errorf("eventName violation = %v", fields["eventName"])
	}
	if _, ok := fields["startDate"]; !ok {
		t.Errorf("expected the missing fields to be reported too, got %v", fields)
	}
}

func TestCreateEventDuplicateName(t *testing.T) {
	store := &fakeEventsStore{
		createFn: func(ctx context.Context, e event.Event) (event.Event, error) {
			return event.Event{}, event.ErrDuplicateName
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/event/addEvent", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["code"] != "duplicate_name" {
		t.Errorf("code = %v", e["code"])
	}
}

func TestCreateEventMalformedJSON(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/event/addEvent", strings.NewReader(`{"eventName":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["code"] != "invalid_request" {
		t.Errorf("code = %v", e["code"])
	}
}

func TestCreateEventInvalidatesListCache(t *testing.T) {
	listCache := cache.New(time.Minute)
	listCache.Set("events:list:v1", []event.Event{})

	store := &fakeEventsStore{
		createFn: func(ctx context.Context, e event.Event) (event.Event, error) {
			return e, nil
		},
	}
	r := newEventsRouter(store, listCache)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/event/addEvent", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, ok := listCache.Get("events:list:v1"); ok {
		t.Error("list cache should have been invalidated by the write")
	}
}

func TestUpdateEvent(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return storedEvent(), nil
		},
		updateFn: func(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
			if patch.VenueName == nil || *patch.VenueName != "Annex Hall" {
				t.Errorf("patch = %+v", patch)
			}
			if patch.EventName != nil {
				t.Errorf("untouched field in patch: %+v", patch)
			}
			return patch.Apply(storedEvent()), nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/event/updateEvent/Launch%20Night", strings.NewReader(`{"venueName":"Annex Hall"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Message string      `json:"message"`
		Event   event.Event `json:"event"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Event Updated Successfully" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Event.VenueName != "Annex Hall" {
		t.Errorf("event.venueName = %q", body.Event.VenueName)
	}
}

func TestUpdateEventNotFoundBeforeValidation(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return event.Event{}, event.ErrNotFound
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	// the body is invalid on purpose; the 404 must win
	req := httptest.NewRequest(http.MethodPatch, "/event/updateEvent/nope", strings.NewReader(`{"eventName":"ab"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if e := decodeErrorBody(t, w); e["message"] != "No event found with that name" {
		t.Errorf("message = %v", e["message"])
	}
}

func TestUpdateEventValidationFailure(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return storedEvent(), nil
		},
		updateFn: func(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
			t.Fatal("store must not be reached on validation failure")
			return event.Event{}, nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/event/updateEvent/Launch%20Night", strings.NewReader(`{"endDate":"2026-09-01T10:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	e := decodeErrorBody(t, w)
	details, _ := e["details"].(map[string]any)
	fields, _ := details["fields"].(map[string]any)
	if fields["endDate"] != "End date must be after start date" {
		t.Errorf("endDate violation = %v", fields["endDate"])
	}
}

func TestUpdateEventEmptyPayload(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return storedEvent(), nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/event/updateEvent/Launch%20Night", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if e := decodeErrorBody(t, w); e["message"] != "No fields to update" {
		t.Errorf("message = %v", e["message"])
	}
}

func TestUpdateEventRenameCollision(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(ctx context.Context, name string) (event.Event, error) {
			return storedEvent(), nil
		},
		updateFn: func(ctx context.Context, name string, patch event.EventPatch) (event.Event, error) {
			return event.Event{}, event.ErrDuplicateName
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/event/updateEvent/Launch%20Night", strings.NewReader(`{"eventName":"Demo Day"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["code"] != "duplicate_name" {
		t.Errorf("code = %v", e["code"])
	}
}

func TestDeleteEvent(t *testing.T) {
	store := &fakeEventsStore{
		deleteFn: func(ctx context.Context, name string) (event.Event, error) {
			return storedEvent(), nil
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/event/deleteEvent/Launch%20Night", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Message string      `json:"message"`
		Event   event.Event `json:"event"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Event Deleted Successfully" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Event.EventName != "Launch Night" {
		t.Errorf("event.eventName = %q", body.Event.EventName)
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	store := &fakeEventsStore{
		deleteFn: func(ctx context.Context, name string) (event.Event, error) {
			return event.Event{}, event.ErrNotFound
		},
	}
	r := newEventsRouter(store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/event/deleteEvent/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeErrorBody(t, w); e["message"] != "No event found with that name" {
		t.Errorf("message = %v", e["message"])
	}
}
