// internal/app/features/images/routes.go
package images

import (
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the image utilities. Typically: r.Mount("/images", images.Routes(h)).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/convert-image", h.HandleConvert)
	})

	return r
}
