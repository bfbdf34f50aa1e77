package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/eventdesk/internal/cache"
	"github.com/geocoder89/eventdesk/internal/domain/event"
	"github.com/gin-gonic/gin"
)

// EventsStore is the persistence boundary for events. NotFound and
// DuplicateName surface as the event package sentinels so the handler can
// choose a status; anything else is a store fault.
type EventsStore interface {
	List(ctx context.Context) ([]event.Event, error)
	GetByName(ctx context.Context, name string) (event.Event, error)
	Create(ctx context.Context, e event.Event) (event.Event, error)
	Update(ctx context.Context, name string, patch event.EventPatch) (event.Event, error)
	Delete(ctx context.Context, name string) (event.Event, error)
}

const listCacheKey = "events:list:v1"

type EventsHandler struct {
	store EventsStore
	cache *cache.Cache // optional, list reads only
}

func NewEventsHandler(store EventsStore, listCache *cache.Cache) *EventsHandler {
	return &EventsHandler{store: store, cache: listCache}
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	if h.cache != nil {
		if v, ok := h.cache.Get(listCacheKey); ok {
			if events, ok := v.([]event.Event); ok {
				RespondJSONWithETag(ctx, http.StatusOK, events)
				return
			}
		}
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	events, err := h.store.List(cctx)

	if err != nil {
		slog.ErrorContext(ctx.Request.Context(), "list events failed", "err", err)
		RespondInternal(ctx, "Could not list events")
		return
	}

	if h.cache != nil {
		h.cache.Set(listCacheKey, events)
	}

	// an empty collection is a plain 200 with an empty array, not a 404
	RespondJSONWithETag(ctx, http.StatusOK, events)
}

func (h *EventsHandler) GetEventByName(ctx *gin.Context) {
	name := ctx.Param("eventName")

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	e, err := h.store.GetByName(cctx, name)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "get event failed", "err", err, "eventName", name)
		RespondInternal(ctx, "Could not fetch event")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	payload, ok := decodeEventPayload(ctx)
	if !ok {
		return
	}

	e, violations := event.ValidateCreate(payload)

	if !violations.Empty() {
		RespondError(ctx, http.StatusBadRequest, "validation_failed", "Event validation failed", gin.H{"fields": violations})
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	created, err := h.store.Create(cctx, e)

	if err != nil {
		if errors.Is(err, event.ErrDuplicateName) {
			RespondError(ctx, http.StatusBadRequest, "duplicate_name", "An event with that name already exists", nil)
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "create event failed", "err", err)
		RespondInternal(ctx, "Could not create event")
		return
	}

	h.invalidate()

	ctx.JSON(http.StatusCreated, created)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	name := ctx.Param("eventName")

	payload, ok := decodeEventPayload(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	// absent events 404 before any validation runs
	existing, err := h.store.GetByName(cctx, name)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "No event found with that name")
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "update event failed", "err", err, "eventName", name)
		RespondInternal(ctx, "Could not update event")
		return
	}

	patch, violations := event.ValidateUpdate(existing, payload)

	if !violations.Empty() {
		RespondError(ctx, http.StatusBadRequest, "validation_failed", "Event validation failed", gin.H{"fields": violations})
		return
	}

	if patch.IsZero() {
		RespondBadRequest(ctx, "No fields to update", nil)
		return
	}

	updated, err := h.store.Update(cctx, name, patch)

	if err != nil {
		// the event may have vanished between lookup and write
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "No event found with that name")
			return
		}
		if errors.Is(err, event.ErrDuplicateName) {
			RespondError(ctx, http.StatusBadRequest, "duplicate_name", "An event with that name already exists", nil)
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "update event failed", "err", err, "eventName", name)
		RespondInternal(ctx, "Could not update event")
		return
	}

	h.invalidate()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Event Updated Successfully",
		"event":   updated,
	})
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	name := ctx.Param("eventName")

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	deleted, err := h.store.Delete(cctx, name)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "No event found with that name")
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "delete event failed", "err", err, "eventName", name)
		RespondInternal(ctx, "Could not delete event")
		return
	}

	h.invalidate()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Event Deleted Successfully",
		"event":   deleted,
	})
}

func (h *EventsHandler) invalidate() {
	if h.cache != nil {
		h.cache.Delete(listCacheKey)
	}
}

// decodeEventPayload reads the body into an untyped map for the validation
// engine. UseNumber keeps numerics as json.Number so the engine can tell
// integers from floats; an empty body is treated as an empty payload so the
// engine reports the missing fields itself.
func decodeEventPayload(ctx *gin.Context) (map[string]any, bool) {
	payload := map[string]any{}

	dec := json.NewDecoder(ctx.Request.Body)
	dec.UseNumber()

	err := dec.Decode(&payload)

	if err != nil && !errors.Is(err, io.EOF) {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"json": "invalid_json_syntax"})
		return nil, false
	}

	return payload, true
}

func requestTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), 3*time.Second)
}
