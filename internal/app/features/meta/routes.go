// internal/app/features/meta/routes.go
package meta

import (
	"github.com/go-chi/chi/v5"
)

// Routes builds the option list router. The lists carry no data beyond
// fixed vocabularies, so they are public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/member-options", h.HandleMemberOptions)
	r.Get("/attendance-options", h.HandleAttendanceOptions)
	return r
}
