// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	insightsvc "github.com/flocklabs/flockhub/internal/app/service/insight"
	membersvc "github.com/flocklabs/flockhub/internal/app/service/members"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/paging"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the member resource routes.
type Handler struct {
	Members *membersvc.Service
	Insight *insightsvc.Service
	Log     *zap.Logger
}

func NewHandler(members *membersvc.Service, insight *insightsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Members: members, Insight: insight, Log: logger}
}

// HandleCreate handles POST /members.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var m models.Member
	if err := httpjson.Decode(r, &m); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Members.Create(ctx, m)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleList handles GET /members with skip/limit/search/status/role.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Members.List(ctx, membersvc.ListParams{
		Skip:   page.Skip,
		Limit:  page.Limit,
		Search: q.Get("search"),
		Status: q.Get("status"),
		Role:   q.Get("role"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleActive handles GET /members/active: the congregation view, which
// excludes relocated and outreach members.
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Members.ActiveMembers(ctx, page.Skip, page.Limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleGet handles GET /members/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

// HandleGetByPhone handles GET /members/phone/{phone}: lookup by the
// normalized phone number, the check-in desk's fastest key.
func (h *Handler) HandleGetByPhone(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByPhone(ctx, chi.URLParam(r, "phone"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

// HandleUpdate handles PUT /members/{id} with partial-update semantics:
// absent fields stay, explicit nulls clear.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd membersvc.UpdateInput
	if err := httpjson.Decode(r, &upd); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Members.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /members/{id}: soft delete, 204 on success.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Members.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBirthdaysThisMonth handles GET /members/birthdays/this-month.
func (h *Handler) HandleBirthdaysThisMonth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Members.BirthdaysThisMonth(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleBirthdaysToday handles GET /members/birthdays/today.
func (h *Handler) HandleBirthdaysToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Members.BirthdaysToday(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleAgeRange handles GET /members/age-range?min_age=&max_age=.
func (h *Handler) HandleAgeRange(w http.ResponseWriter, r *http.Request) {
	min, err1 := strconv.Atoi(r.URL.Query().Get("min_age"))
	max, err2 := strconv.Atoi(r.URL.Query().Get("max_age"))
	if err1 != nil || err2 != nil {
		httpjson.Error(w, http.StatusBadRequest, "min_age and max_age must be integers")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Members.ByAgeRange(ctx, min, max)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleStatistics handles GET /members/statistics.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := h.Members.Statistics(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

// HandleInsight handles POST /members/{id}/insight: AI pastoral guidance
// for one member. Backend failures degrade to fallback text, never a 5xx.
func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	m, err := h.Members.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	text := h.Insight.MemberInsight(ctx, m)
	httpjson.Write(w, http.StatusOK, map[string]string{
		"member_id": m.ID.Hex(),
		"insight":   text,
	})
}

// HandleSuggestTags handles POST /members/suggest-tags: AI tag
// suggestions for free text such as a pastoral note. Backend failures
// yield an empty list, never a 5xx.
func (h *Handler) HandleSuggestTags(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text  string `json:"text"`
		Title string `json:"title"`
	}
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Text == "" {
		httpjson.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	tags := h.Insight.Tags(ctx, in.Text, in.Title)
	httpjson.Write(w, http.StatusOK, map[string]any{"tags": tags})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpjson.FieldErrors(w, verr.Fields)
	case errors.Is(err, membersvc.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, membersvc.ErrDuplicateEmail), errors.Is(err, membersvc.ErrDuplicatePhone):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		h.Log.Error("member request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
