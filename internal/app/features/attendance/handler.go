// internal/app/features/attendance/handler.go
package attendance

import (
	"context"
	"errors"
	"net/http"

	attendancesvc "github.com/flocklabs/flockhub/internal/app/service/attendance"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/paging"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the attendance resource routes.
type Handler struct {
	Attendance *attendancesvc.Service
	Log        *zap.Logger
}

func NewHandler(attendance *attendancesvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Attendance: attendance, Log: logger}
}

// HandleCreate handles POST /attendance. The recorder is the signed-in
// user, not a field the client chooses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var a models.Attendance
	if err := httpjson.Decode(r, &a); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if u, ok := auth.CurrentUser(r); ok {
		a.RecordedBy = u.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Attendance.Create(ctx, a)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleList handles GET /attendance.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Attendance.List(ctx, attendancesvc.ListParams{
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

// HandleGet handles GET /attendance/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Attendance.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, a)
}

// HandleUpdate handles PUT /attendance/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd attendancesvc.UpdateInput
	if err := httpjson.Decode(r, &upd); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Attendance.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, a)
}

// HandleDelete handles DELETE /attendance/{id}: hard delete, 204.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Attendance.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleByMember handles GET /attendance/member/{memberID}.
func (h *Handler) HandleByMember(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Attendance.ByMember(ctx, chi.URLParam(r, "memberID"), page.Skip, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleRecent handles GET /attendance/recent, newest recordings first.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Attendance.Recent(ctx, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleByDate handles GET /attendance/date/{date}?attendance_type=.
func (h *Handler) HandleByDate(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Attendance.ByDate(ctx, date, r.URL.Query().Get("attendance_type"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleByRange handles GET /attendance/range with start_date, end_date,
// and optional member_id / attendance_type narrowing.
func (h *Handler) HandleByRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := parseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Attendance.ByDateRange(ctx, start, end, q.Get("member_id"), q.Get("attendance_type"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleMemberSummary handles GET /attendance/summary/member/{memberID}.
func (h *Handler) HandleMemberSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := parseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	summary, err := h.Attendance.MemberSummary(ctx, chi.URLParam(r, "memberID"), start, end)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, summary)
}

// HandleServiceSummary handles GET /attendance/summary/service with
// service_date and attendance_type.
func (h *Handler) HandleServiceSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := models.ParseDate(q.Get("service_date"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	summary, err := h.Attendance.ServiceSummary(ctx, date, q.Get("attendance_type"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, summary)
}

// HandleTrends handles GET /attendance/trends with start_date, end_date,
// and optional attendance_type.
func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := parseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	trends, err := h.Attendance.Trends(ctx, start, end, q.Get("attendance_type"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, trends)
}

// HandleStatistics handles GET /attendance/statistics.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := h.Attendance.Statistics(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

func parseRange(startRaw, endRaw string) (models.Date, models.Date, error) {
	start, err := models.ParseDate(startRaw)
	if err != nil {
		return models.Date{}, models.Date{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := models.ParseDate(endRaw)
	if err != nil {
		return models.Date{}, models.Date{}, errors.New("end_date must be YYYY-MM-DD")
	}
	return start, end, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpjson.FieldErrors(w, verr.Fields)
	case errors.Is(err, attendancesvc.ErrNotFound), errors.Is(err, attendancesvc.ErrMemberNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, attendancesvc.ErrDuplicateRecord):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, attendancesvc.ErrFutureDate):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("attendance request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
