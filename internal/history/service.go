package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
	"github.com/223nobody/GameAnalysis/internal/metrics"
	"github.com/223nobody/GameAnalysis/internal/validation"
)

// ErrAdviceUnavailable is returned when no advice writer is configured.
var ErrAdviceUnavailable = fmt.Errorf("advice writer: %w", ai.ErrNotConfigured)

// Adviser produces a piece of advice text.
type Adviser interface {
	Write(ctx context.Context) (string, error)
}

type historyStore interface {
	Insert(ctx context.Context, row repository.PredictionRow) (int64, error)
	UpdateTactics(ctx context.Context, id int64, tactics string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter repository.HistoryFilter, page query.Page) ([]repository.PredictionRow, int64, error)
	ListWindow(ctx context.Context, win query.Window) ([]repository.PredictionRow, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id int64) (repository.PredictionRow, bool, error)
	Statistics(ctx context.Context) (repository.Statistics, error)
}

type advisoryStore interface {
	Insert(ctx context.Context, content string) (int64, error)
	List(ctx context.Context, page query.Page) ([]repository.AdvisoryRow, int64, error)
}

// Service records predictions and manages advice attached to them.
type Service struct {
	repo       historyStore
	advisories advisoryStore
	adviser    Adviser
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

type ServiceOptions struct {
	// Adviser is optional; nil makes GenerateAdvice return ErrAdviceUnavailable.
	Adviser Adviser
	Metrics *metrics.Metrics
}

func NewService(repo historyStore, advisories advisoryStore, logger zerolog.Logger, opts ServiceOptions) *Service {
	m := opts.Metrics
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{
		repo:       repo,
		advisories: advisories,
		adviser:    opts.Adviser,
		metrics:    m,
		logger:     logger.With().Str("component", "history_service").Logger(),
	}
}

// Record stores a prediction. The probability is kept as a percentage next
// to its confidence bucket.
func (s *Service) Record(ctx context.Context, in Input) (Outcome, error) {
	if in.Probability == nil {
		return Outcome{}, s.rejected(validation.New(validation.StageRequest, "required", "probability", "probability is required"))
	}
	p := *in.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Outcome{}, s.rejected(validation.New(validation.StageStructure, "probability_range", "probability",
			fmt.Sprintf("probability must be within [0, 1], got %v", p)))
	}
	for _, f := range in.fields() {
		if f.value == nil {
			return Outcome{}, s.rejected(validation.New(validation.StageRequest, "required", f.name, f.name+" is required"))
		}
	}

	row := toRow(in)
	id, err := s.repo.Insert(ctx, row)
	if err != nil {
		return Outcome{}, err
	}
	s.logger.Info().Int64("id", id).Str("confidence", row.Confidence).Msg("prediction recorded")
	return Outcome{
		RecordID:       id,
		WinProbability: roundTo(p, 4),
		Percentage:     row.Result,
		Confidence:     Confidence(row.Confidence),
	}, nil
}

type inputField struct {
	name  string
	value *float64
}

func (in Input) fields() []inputField {
	return []inputField{
		{"game_size", in.GameSize},
		{"party_size", in.PartySize},
		{"player_kills", in.PlayerKills},
		{"player_dmg", in.PlayerDmg},
		{"player_dbno", in.PlayerDBNO},
		{"player_assists", in.PlayerAssists},
		{"player_survive_time", in.PlayerSurviveTime},
		{"player_dist_walk", in.PlayerDistWalk},
		{"player_dist_ride", in.PlayerDistRide},
	}
}

// List returns one page of predictions, newest first.
func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (Page, error) {
	if filter.Confidence != "" && !filter.Confidence.Valid() {
		return Page{}, s.rejected(validation.New(validation.StageRequest, "confidence_invalid", "confidence",
			fmt.Sprintf("confidence must be high, medium or low, got %q", filter.Confidence)))
	}
	rows, total, err := s.repo.List(ctx, repository.HistoryFilter{Confidence: string(filter.Confidence)}, page)
	if err != nil {
		return Page{}, err
	}
	return Page{History: fromRows(rows), Pagination: page.Info(total)}, nil
}

// ListWindow is the limit/offset listing used by clients that do not page.
func (s *Service) ListWindow(ctx context.Context, win query.Window) (Window, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Window{}, err
	}
	res := Window{
		History:    []Prediction{},
		TotalCount: total,
		Limit:      win.Limit,
		Offset:     win.Offset,
		HasMore:    int64(win.Offset+win.Limit) < total,
	}
	if total == 0 {
		return res, nil
	}
	rows, err := s.repo.ListWindow(ctx, win)
	if err != nil {
		return Window{}, err
	}
	res.History = fromRows(rows)
	return res, nil
}

// Stats summarises the stored predictions.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Statistics(ctx)
}

// Get loads one prediction. The bool is false when it does not exist.
func (s *Service) Get(ctx context.Context, id int64) (Prediction, bool, error) {
	row, ok, err := s.repo.Get(ctx, id)
	if err != nil || !ok {
		return Prediction{}, ok, err
	}
	return fromRow(row), true, nil
}

// Delete removes one prediction. The bool is false when it did not exist.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err == nil && ok {
		s.logger.Info().Int64("id", id).Msg("prediction deleted")
	}
	return ok, err
}

// SetTactics attaches advice text to a prediction. The bool is false when
// the record is missing or already has tactics.
func (s *Service) SetTactics(ctx context.Context, id int64, tactics string) (bool, error) {
	if strings.TrimSpace(tactics) == "" {
		return false, s.rejected(validation.New(validation.StageRequest, "tactics_required", "tactics", "tactics must not be empty"))
	}
	return s.repo.UpdateTactics(ctx, id, tactics)
}

// GenerateAdvice asks the adviser for a guide and stores it. With a record id
// the text becomes that prediction's tactics; otherwise, or when the record
// cannot take it, it is stored as a free-standing advisory.
func (s *Service) GenerateAdvice(ctx context.Context, recordID *int64) (AdviceResult, error) {
	if s.adviser == nil {
		return AdviceResult{}, ErrAdviceUnavailable
	}

	start := time.Now()
	content, err := s.adviser.Write(ctx)
	s.metrics.GenerationLatency.WithLabelValues("advice").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Generations.WithLabelValues("advice", "failed").Inc()
		if !errors.Is(err, ai.ErrGeneration) {
			err = fmt.Errorf("%w: %w", ai.ErrGeneration, err)
		}
		return AdviceResult{}, err
	}
	s.metrics.Generations.WithLabelValues("advice", "ok").Inc()

	res := AdviceResult{
		Success:   true,
		Advice:    content,
		Message:   "advice generated",
		Operation: OperationCreated,
	}

	if recordID != nil {
		ok, err := s.repo.UpdateTactics(ctx, *recordID, content)
		if err != nil {
			s.logger.Warn().Err(err).Int64("record_id", *recordID).Msg("attach advice failed")
			return res, nil
		}
		if ok {
			id := *recordID
			res.DatabaseSaved = true
			res.RecordID = &id
			res.Operation = OperationUpdated
			return res, nil
		}
		s.logger.Info().Int64("record_id", *recordID).Msg("record missing or already advised, storing advisory")
	}

	id, err := s.advisories.Insert(ctx, content)
	if err != nil {
		s.logger.Warn().Err(err).Msg("store advisory failed")
		return res, nil
	}
	res.DatabaseSaved = true
	res.RecordID = &id
	return res, nil
}

// Advisories lists free-standing advice, newest first.
func (s *Service) Advisories(ctx context.Context, page query.Page) (AdvisoryPage, error) {
	rows, total, err := s.advisories.List(ctx, page)
	if err != nil {
		return AdvisoryPage{}, err
	}
	out := make([]Advisory, len(rows))
	for i, r := range rows {
		out[i] = Advisory{ID: r.ID, Content: r.Content, CreatedAt: r.CreatedAt}
	}
	return AdvisoryPage{Advisories: out, Pagination: page.Info(total)}, nil
}

func (s *Service) rejected(err error) error {
	if verr, ok := validation.As(err); ok {
		s.metrics.ValidationRejections.WithLabelValues(verr.Rule).Inc()
	}
	return err
}
