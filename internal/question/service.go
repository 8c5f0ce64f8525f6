package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
	"github.com/223nobody/GameAnalysis/internal/metrics"
	"github.com/223nobody/GameAnalysis/internal/validation"
)

// ErrGeneratorUnavailable is returned when no generator is configured.
var ErrGeneratorUnavailable = fmt.Errorf("question generator: %w", ai.ErrNotConfigured)

// Generator produces candidate questions for a normalized request.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Candidate, error)
}

type questionStore interface {
	Insert(ctx context.Context, row repository.QuestionRow) (int64, error)
	BatchInsert(ctx context.Context, rows []repository.QuestionRow) (int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	List(ctx context.Context, filter repository.QuestionFilter, page query.Page) ([]repository.QuestionRow, int64, error)
}

// Service validates questions before they reach the store and brokers
// generation requests.
type Service struct {
	repo    questionStore
	gen     Generator
	cache   DraftCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

type ServiceOptions struct {
	// Cache is optional; nil disables draft caching.
	Cache   DraftCache
	Metrics *metrics.Metrics
}

func NewService(repo questionStore, gen Generator, logger zerolog.Logger, opts ServiceOptions) *Service {
	m := opts.Metrics
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{
		repo:    repo,
		gen:     gen,
		cache:   opts.Cache,
		metrics: m,
		logger:  logger.With().Str("component", "question_service").Logger(),
	}
}

// Generate asks the generator for a batch and returns it only if every item
// passes validation. Nothing is persisted.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) ([]Question, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return nil, s.rejected(err)
	}
	if s.gen == nil {
		return nil, ErrGeneratorUnavailable
	}

	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, req)
		if err != nil {
			s.logger.Warn().Err(err).Msg("draft cache read failed")
		} else if ok {
			if qs, err := ValidateGenerated(req, items); err == nil {
				s.metrics.Generations.WithLabelValues("question", "cache_hit").Inc()
				return qs, nil
			}
		}
	}

	start := time.Now()
	items, err := s.gen.Generate(ctx, req)
	s.metrics.GenerationLatency.WithLabelValues("question").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Generations.WithLabelValues("question", "error").Inc()
		if !errors.Is(err, ai.ErrGeneration) {
			err = fmt.Errorf("%w: %w", ai.ErrGeneration, err)
		}
		return nil, err
	}

	qs, err := ValidateGenerated(req, items)
	if err != nil {
		s.metrics.Generations.WithLabelValues("question", "rejected").Inc()
		s.logger.Warn().Err(err).Str("keyword", req.Keyword).Msg("generated batch rejected")
		return nil, s.rejected(err)
	}
	s.metrics.Generations.WithLabelValues("question", "ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, req, items); err != nil {
			s.logger.Warn().Err(err).Msg("draft cache write failed")
		}
	}
	return qs, nil
}

// GenerateAndSave generates a batch and stores all of it in one transaction.
func (s *Service) GenerateAndSave(ctx context.Context, req GenerateRequest) ([]Question, error) {
	qs, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.BatchInsert(ctx, toRows(qs)); err != nil {
		return nil, fmt.Errorf("save generated questions: %w", err)
	}
	return qs, nil
}

// Create validates and stores one question.
func (s *Service) Create(ctx context.Context, q Question) (int64, error) {
	q = normalize(q)
	if err := Validate(q); err != nil {
		return 0, s.rejected(err)
	}
	id, err := s.repo.Insert(ctx, toRow(q))
	if err != nil {
		return 0, fmt.Errorf("create question: %w", err)
	}
	return id, nil
}

// BatchCreate validates every question first, then stores all or none.
func (s *Service) BatchCreate(ctx context.Context, qs []Question) (int64, error) {
	if len(qs) == 0 {
		return 0, s.rejected(validation.New(validation.StageRequest, "questions_required", "questions", "at least one question is required"))
	}
	for i := range qs {
		qs[i] = normalize(qs[i])
	}
	if err := ValidateBatch(qs); err != nil {
		return 0, s.rejected(err)
	}
	n, err := s.repo.BatchInsert(ctx, toRows(qs))
	if err != nil {
		return 0, fmt.Errorf("batch create questions: %w", err)
	}
	return n, nil
}

// List returns one page of questions matching filter.
func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (ListResult, error) {
	page = query.NewPage(page.Number, page.Size)
	rf := repository.QuestionFilter{Language: filter.Language, Search: filter.Search}
	if filter.Type != nil {
		t := int(*filter.Type)
		rf.Type = &t
	}
	rows, total, err := s.repo.List(ctx, rf, page)
	if err != nil {
		return ListResult{}, fmt.Errorf("list questions: %w", err)
	}
	out := make([]Question, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return ListResult{Questions: out, Total: total, Pagination: page.Info(total)}, nil
}

// Delete removes the listed ids and reports how many existed.
func (s *Service) Delete(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}
	return n, nil
}

func (s *Service) rejected(err error) error {
	if verr, ok := validation.As(err); ok {
		s.metrics.ValidationRejections.WithLabelValues(verr.Rule).Inc()
	}
	return err
}

func normalize(q Question) Question {
	q.Answers = orEmpty(q.Answers)
	q.Rights = orEmpty(q.Rights)
	return q
}

func toRow(q Question) repository.QuestionRow {
	return repository.QuestionRow{
		Title:    q.Title,
		Type:     int(q.Type),
		Language: q.Language,
		Answers:  repository.TextList(orEmpty(q.Answers)),
		Rights:   repository.TextList(orEmpty(q.Rights)),
	}
}

func toRows(qs []Question) []repository.QuestionRow {
	rows := make([]repository.QuestionRow, len(qs))
	for i, q := range qs {
		rows[i] = toRow(q)
	}
	return rows
}

func fromRow(row repository.QuestionRow) Question {
	return Question{
		ID:       row.ID,
		Title:    row.Title,
		Type:     Type(row.Type),
		Language: row.Language,
		Answers:  orEmpty(row.Answers),
		Rights:   orEmpty(row.Rights),
	}
}
