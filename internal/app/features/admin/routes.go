// internal/app/features/admin/routes.go
package admin

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the admin router behind the admin gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn, auth.RequireAdmin)

	r.Get("/users", h.HandleListUsers)
	r.Put("/users/{id}", h.HandleUpdateUser)
	r.Delete("/users/{id}", h.HandleDeactivateUser)

	r.Get("/backup", h.HandleBackup)
	r.Post("/restore", h.HandleRestore)

	return r
}
