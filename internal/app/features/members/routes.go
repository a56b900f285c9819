// internal/app/features/members/routes.go
package members

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all member routes under the path where the caller mounts it.
// Typically: r.Mount("/members", members.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.HandleList)
		pr.Get("/active", h.HandleActive)
		pr.Get("/birthdays/this-month", h.HandleBirthdaysThisMonth)
		pr.Get("/birthdays/today", h.HandleBirthdaysToday)
		pr.Get("/age-range", h.HandleAgeRange)
		pr.Get("/statistics", h.HandleStatistics)
		pr.Post("/suggest-tags", h.HandleSuggestTags)
		pr.Get("/phone/{phone}", h.HandleGetByPhone)

		pr.Get("/{id}", h.HandleGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/insight", h.HandleInsight)
	})

	return r
}
