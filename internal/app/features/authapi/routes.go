// internal/app/features/authapi/routes.go
package authapi

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth endpoints. Typically: r.Mount("/auth", authapi.Routes(h)).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/me", h.HandleMe)
		pr.Put("/profile", h.HandleProfile)
	})

	return r
}
