// internal/app/features/attendance/routes.go
package attendance

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the attendance router. All endpoints require a
// signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/range", h.HandleByRange)
	r.Get("/recent", h.HandleRecent)
	r.Get("/trends", h.HandleTrends)
	r.Get("/statistics", h.HandleStatistics)
	r.Get("/date/{date}", h.HandleByDate)
	r.Get("/member/{memberID}", h.HandleByMember)
	r.Get("/summary/member/{memberID}", h.HandleMemberSummary)
	r.Get("/summary/service", h.HandleServiceSummary)

	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
