// internal/app/features/events/routes.go
package events

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the calendar event router. All endpoints require a
// signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/upcoming", h.HandleUpcoming)
	r.Get("/today", h.HandleToday)
	r.Get("/this-week", h.HandleThisWeek)
	r.Get("/this-month", h.HandleThisMonth)
	r.Get("/past", h.HandlePast)
	r.Get("/public", h.HandlePublic)
	r.Get("/calendar/{calendarID}", h.HandleByCalendar)
	r.Get("/statistics", h.HandleStatistics)

	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
