// internal/app/features/meta/handler.go
//
// Package meta exposes the option lists clients use to build form
// dropdowns. The values are fixed at build time, so the handlers take
// no dependencies.
package meta

import (
	"net/http"

	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/domain/models"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// HandleMemberOptions handles GET /meta/member-options.
func (h *Handler) HandleMemberOptions(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string][]models.Option{
		"statuses":         models.AllMemberStatuses,
		"roles":            models.AllMemberRoles,
		"ministries":       models.AllMinistries,
		"genders":          models.AllGenders,
		"marital_statuses": models.AllMaritalStatuses,
	})
}

// HandleAttendanceOptions handles GET /meta/attendance-options.
func (h *Handler) HandleAttendanceOptions(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string][]models.Option{
		"types":    models.AllAttendanceTypes,
		"statuses": models.AllAttendanceStatuses,
	})
}
