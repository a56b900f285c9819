// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"errors"
	"net/http"

	usersvc "github.com/flocklabs/flockhub/internal/app/service/users"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	backupstore "github.com/flocklabs/flockhub/internal/app/store/backup"
	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/paging"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler serves the admin-only routes: account management and full
// database backup/restore.
type Handler struct {
	Users  *usersvc.Service
	Backup *backupstore.Store
	Log    *zap.Logger
}

func NewHandler(users *usersvc.Service, backup *backupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Backup: backup, Log: logger}
}

// HandleListUsers handles GET /admin/users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx, usersvc.ListParams{
		Skip:   page.Skip,
		Limit:  page.Limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleUpdateUser handles PUT /admin/users/{id}.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var upd usersvc.UpdateInput
	if err := httpjson.Decode(r, &upd); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

// HandleDeactivateUser handles DELETE /admin/users/{id}. Accounts are
// deactivated, never removed.
func (h *Handler) HandleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Deactivate(ctx, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBackup handles GET /admin/backup: a full JSON export of every
// collection.
func (h *Handler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	data, err := h.Backup.Export(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, data)
}

// HandleRestore handles POST /admin/restore: replaces every collection
// with the posted export. Uses the larger restore body cap.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	var data map[string][]bson.M
	if err := httpjson.DecodeLimit(r, &data, httpjson.RestoreMaxBodyBytes); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	counts, err := h.Backup.Import(ctx, data)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"restored": counts})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpjson.FieldErrors(w, verr.Fields)
	case errors.Is(err, usersvc.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usersvc.ErrDuplicateEmail), errors.Is(err, usersvc.ErrDuplicateUsername):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		h.Log.Error("admin request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
