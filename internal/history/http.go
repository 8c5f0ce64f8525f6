package history

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/httpx"
	"github.com/223nobody/GameAnalysis/internal/logging"
	"github.com/223nobody/GameAnalysis/internal/validation"
	apierrors "github.com/223nobody/GameAnalysis/pkg/http/errors"
)

// HTTPHandler exposes prediction history and advice endpoints. Success
// bodies are plain JSON objects.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "history_http").Logger(),
	}
}

// Routes registers the endpoints on r. generate wraps the advice route.
func (h *HTTPHandler) Routes(r chi.Router, generate func(http.Handler) http.Handler) {
	if generate == nil {
		generate = func(next http.Handler) http.Handler { return next }
	}
	r.Route("/history", func(r chi.Router) {
		r.Post("/", h.HandleRecord)
		r.Get("/", h.HandleList)
		r.Get("/stats", h.HandleStats)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleDelete)
		r.Put("/{id}/tactics", h.HandleSetTactics)
	})
	r.With(generate).Post("/generate-advice", h.HandleGenerateAdvice)
	r.Get("/advisories", h.HandleAdvisories)
}

// HandleRecord stores a prediction.
func (h *HTTPHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	out, err := h.svc.Record(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleList pages with page/per_page when either is present and falls back
// to limit/offset otherwise.
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("page") || q.Has("per_page") {
		page := query.NewPage(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "per_page", query.DefaultPageSize))
		res, err := h.svc.List(r.Context(), Filter{Confidence: Confidence(q.Get("confidence"))}, page)
		if err != nil {
			httpx.WriteError(w, h.log(r), err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
		return
	}

	win := query.NewWindow(httpx.QueryIntPtr(r, "limit"), httpx.QueryIntPtr(r, "offset"))
	res, err := h.svc.ListWindow(r.Context(), win)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, found, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	if !found {
		apierrors.RespondNotFound(w, apierrors.ErrCodeRecordNotFound, "record not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	if !deleted {
		apierrors.RespondNotFound(w, apierrors.ErrCodeRecordNotFound, "record not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "record deleted", "id": id})
}

type tacticsRequest struct {
	Tactics string `json:"tactics" validate:"required"`
}

// HandleSetTactics fills in a record's tactics once.
func (h *HTTPHandler) HandleSetTactics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body tacticsRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	updated, err := h.svc.SetTactics(r.Context(), id, body.Tactics)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	if !updated {
		_, exists, err := h.svc.Get(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, h.log(r), err)
			return
		}
		if exists {
			apierrors.RespondError(w, http.StatusConflict, apierrors.ErrCodeAlreadySet, "tactics already set")
			return
		}
		apierrors.RespondNotFound(w, apierrors.ErrCodeRecordNotFound, "record not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "tactics updated", "id": id})
}

type adviceRequest struct {
	RecordID *int64 `json:"record_id" validate:"omitempty,min=1"`
}

// HandleGenerateAdvice generates a guide. The body is optional.
func (h *HTTPHandler) HandleGenerateAdvice(w http.ResponseWriter, r *http.Request) {
	var body adviceRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		if verr, ok := validation.As(err); !ok || verr.Rule != "body_required" {
			httpx.WriteError(w, h.log(r), err)
			return
		}
	}
	res, err := h.svc.GenerateAdvice(r.Context(), body.RecordID)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *HTTPHandler) HandleAdvisories(w http.ResponseWriter, r *http.Request) {
	page := query.NewPage(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "page_size", query.DefaultPageSize))
	res, err := h.svc.Advisories(r.Context(), page)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		apierrors.RespondBadRequest(w, apierrors.ErrCodeInvalidID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) log(r *http.Request) zerolog.Logger {
	return logging.FromContextOr(r.Context(), h.logger)
}
