package question

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/httpx"
	"github.com/223nobody/GameAnalysis/internal/logging"
	"github.com/223nobody/GameAnalysis/internal/validation"
)

// HTTPHandler exposes the question endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandler constructs a question HTTP handler.
func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "question_http").Logger(),
	}
}

// Routes registers the question endpoints on r. generate wraps the
// generation route so callers can rate limit it separately.
func (h *HTTPHandler) Routes(r chi.Router, generate func(http.Handler) http.Handler) {
	if generate == nil {
		generate = func(next http.Handler) http.Handler { return next }
	}
	r.With(generate).Post("/CreateByAI", h.HandleGenerate)
	r.Post("/CreateByHand", h.HandleCreate)
	r.Post("/batch-insert", h.HandleBatchInsert)
	r.Get("/summary", h.HandleSummary)
	r.Delete("/batch-delete", h.HandleBatchDelete)
}

type generateRequest struct {
	Keyword  string `json:"keyword" validate:"required"`
	Model    string `json:"model"`
	Language string `json:"language"`
	Count    int    `json:"count" validate:"omitempty,min=3,max=10"`
	Type     int    `json:"type" validate:"omitempty,min=1,max=3"`
	Save     bool   `json:"save"`
}

type candidateView struct {
	Title   string   `json:"title"`
	Answers []string `json:"answers"`
	Rights  []string `json:"rights"`
}

// HandleGenerate responds with a validated generated batch. With save set the
// batch is also stored.
func (h *HTTPHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	req := GenerateRequest{
		Keyword:  body.Keyword,
		Model:    body.Model,
		Language: body.Language,
		Count:    body.Count,
		Type:     Type(body.Type),
	}

	generate := h.svc.Generate
	if body.Save {
		generate = h.svc.GenerateAndSave
	}
	qs, err := generate(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}

	views := make([]candidateView, len(qs))
	for i, q := range qs {
		views[i] = candidateView{Title: q.Title, Answers: q.Answers, Rights: q.Rights}
	}
	httpx.WriteOK(w, "", map[string]any{"aiRes": map[string]any{"questions": views}})
}

type createRequest struct {
	Title    string   `json:"title"`
	Type     int      `json:"type"`
	Language string   `json:"language"`
	Answers  []string `json:"answers"`
	Rights   []string `json:"rights"`
}

func (c createRequest) question() Question {
	return Question{Title: c.Title, Type: Type(c.Type), Language: c.Language, Answers: c.Answers, Rights: c.Rights}
}

// HandleCreate stores one hand-written question.
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	id, err := h.svc.Create(r.Context(), body.question())
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteOK(w, "created", map[string]any{"id": id})
}

type batchInsertRequest struct {
	Questions []createRequest `json:"questions" validate:"required,min=1"`
}

// HandleBatchInsert stores a list of questions atomically.
func (h *HTTPHandler) HandleBatchInsert(w http.ResponseWriter, r *http.Request) {
	var body batchInsertRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	qs := make([]Question, len(body.Questions))
	for i, c := range body.Questions {
		qs[i] = c.question()
	}
	n, err := h.svc.BatchCreate(r.Context(), qs)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteOK(w, "added", map[string]any{"inserted": n})
}

// HandleSummary lists questions. Query: page, page_size, search, type, language.
func (h *HTTPHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Search:   r.URL.Query().Get("search"),
		Language: r.URL.Query().Get("language"),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		n, err := strconv.Atoi(raw)
		t := Type(n)
		if err != nil || !t.Valid() {
			httpx.WriteError(w, h.log(r), validation.New(validation.StageRequest, "type_invalid", "type",
				fmt.Sprintf("type must be 1, 2 or 3, got %q", raw)))
			return
		}
		filter.Type = &t
	}
	page := query.NewPage(httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "page_size", query.DefaultPageSize))

	res, err := h.svc.List(r.Context(), filter, page)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteOK(w, "", map[string]any{
		"total":      res.Total,
		"questions":  res.Questions,
		"pagination": res.Pagination,
	})
}

type deleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

// HandleBatchDelete removes questions by id.
func (h *HTTPHandler) HandleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var body deleteRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	n, err := h.svc.Delete(r.Context(), body.IDs)
	if err != nil {
		httpx.WriteError(w, h.log(r), err)
		return
	}
	httpx.WriteOK(w, "", map[string]any{
		"deleted_ids":   body.IDs,
		"message":       "deleted",
		"deleted_count": n,
	})
}

func (h *HTTPHandler) log(r *http.Request) zerolog.Logger {
	return logging.FromContextOr(r.Context(), h.logger)
}
