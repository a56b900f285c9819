// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"

	eventsvc "github.com/flocklabs/flockhub/internal/app/service/events"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/paging"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the calendar event routes.
type Handler struct {
	Events *eventsvc.Service
	Log    *zap.Logger
}

func NewHandler(events *eventsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger}
}

// HandleCreate handles POST /events. The organizer defaults to the
// signed-in user when the body leaves it unset.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := httpjson.Decode(r, &e); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if e.OrganizerID.IsZero() {
		if u, ok := auth.CurrentUser(r); ok {
			e.OrganizerID = u.ID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Events.Create(ctx, e)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleList handles GET /events with search and organizer filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.List(ctx, eventsvc.ListParams{
		Skip:      page.Skip,
		Limit:     page.Limit,
		Search:    q.Get("search"),
		Organizer: q.Get("organizer_id"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleGet handles GET /events/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, e)
}

// HandleUpdate handles PUT /events/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd eventsvc.UpdateInput
	if err := httpjson.Decode(r, &upd); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Events.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, e)
}

// HandleDelete handles DELETE /events/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpcoming handles GET /events/upcoming.
func (h *Handler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.Upcoming(ctx, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleToday handles GET /events/today.
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.Today(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleThisWeek handles GET /events/this-week.
func (h *Handler) HandleThisWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.ThisWeek(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleThisMonth handles GET /events/this-month.
func (h *Handler) HandleThisMonth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.ThisMonth(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandlePast handles GET /events/past, most recently ended first.
func (h *Handler) HandlePast(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.Past(ctx, page.Skip, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandlePublic handles GET /events/public.
func (h *Handler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.Public(ctx, page.Skip, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleByCalendar handles GET /events/calendar/{calendarID}: one page of
// the calendar's events plus its total count.
func (h *Handler) HandleByCalendar(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Events.ByCalendar(ctx, chi.URLParam(r, "calendarID"), page.Skip, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleStatistics handles GET /events/statistics.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := h.Events.Statistics(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpjson.FieldErrors(w, verr.Fields)
	case errors.Is(err, eventsvc.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Log.Error("event request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
