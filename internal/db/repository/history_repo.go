package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/validation"
)

const historyTable = "history"

var (
	historyInsertColumns = []string{
		"sumpeople", "sumkill", "sumfall", "sumdist_ride", "sumdist_walk",
		"teamsize", "survival_time", "damage", "assist", "result", "confidence", "tactics",
	}
	historyColumns = append([]string{"id"}, historyInsertColumns...)
)

// PredictionRow is one row of the history table.
type PredictionRow struct {
	ID           int64
	SumPeople    int64
	SumKill      int64
	SumFall      int64
	SumDistRide  int64
	SumDistWalk  int64
	TeamSize     int64
	SurvivalTime int64
	Damage       int64
	Assist       int64
	Result       float64
	Confidence   string
	Tactics      sql.NullString
}

func (p PredictionRow) values() []any {
	return []any{
		p.SumPeople, p.SumKill, p.SumFall, p.SumDistRide, p.SumDistWalk,
		p.TeamSize, p.SurvivalTime, p.Damage, p.Assist, p.Result, p.Confidence, p.Tactics,
	}
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	Confidence string
}

// ConfidenceDistribution counts records per confidence level.
type ConfidenceDistribution struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// Statistics summarises the whole history table.
type Statistics struct {
	TotalPredictions       int64                  `json:"total_predictions"`
	AvgWinRate             float64                `json:"avg_win_rate"`
	MaxWinRate             float64                `json:"max_win_rate"`
	MinWinRate             float64                `json:"min_win_rate"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
}

// HistoryRepository persists prediction records.
type HistoryRepository struct {
	db      *sql.DB
	dialect query.Dialect
}

func NewHistoryRepository(db *sql.DB, dialect query.Dialect) *HistoryRepository {
	return &HistoryRepository{db: db, dialect: dialect}
}

// Insert stores one prediction. Out-of-range values are refused by the table
// and surface as ErrConstraintViolation.
func (r *HistoryRepository) Insert(ctx context.Context, row PredictionRow) (int64, error) {
	stmt, err := r.dialect.InsertReturningID(historyTable, historyInsertColumns)
	if err != nil {
		return 0, wrapErr("insert prediction", err)
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, stmt, row.values()...).Scan(&id); err != nil {
		return 0, wrapErr("insert prediction", err)
	}
	return id, nil
}

// UpdateField sets a single column on one record. Only tactics may be
// written, and only while it is still empty.
func (r *HistoryRepository) UpdateField(ctx context.Context, id int64, field, value string) (bool, error) {
	if field != "tactics" {
		return false, validation.New(validation.StageRequest, "updatable_field", field,
			fmt.Sprintf("field %q cannot be updated", field))
	}
	stmt, args, err := r.dialect.Update(historyTable, field, value).Eq("id", id).IsNull(field).Build()
	if err != nil {
		return false, wrapErr("update prediction", err)
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, wrapErr("update prediction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("update prediction", err)
	}
	return n > 0, nil
}

// UpdateTactics back-fills the tactics text of a record.
func (r *HistoryRepository) UpdateTactics(ctx context.Context, id int64, tactics string) (bool, error) {
	return r.UpdateField(ctx, id, "tactics", tactics)
}

// Delete removes one record. The bool is false when it did not exist.
func (r *HistoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.DeleteByIDs(ctx, []int64{id})
	return n > 0, err
}

// DeleteByIDs removes the listed records. Ids that do not exist are ignored.
func (r *HistoryRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, r.dialect, "delete predictions", historyTable, ids)
}

// List returns one page of predictions, newest first, with the total count.
func (r *HistoryRepository) List(ctx context.Context, filter HistoryFilter, page query.Page) ([]PredictionRow, int64, error) {
	sel := r.dialect.From(historyTable)
	if filter.Confidence != "" {
		sel.Eq("confidence", filter.Confidence)
	}
	return listPage(ctx, r.db, "list predictions", sel, historyColumns, page, scanPrediction)
}

// ListWindow is the unpaginated limit/offset read.
func (r *HistoryRepository) ListWindow(ctx context.Context, win query.Window) ([]PredictionRow, error) {
	stmt, args, err := r.dialect.From(historyTable).Window(historyColumns, win)
	if err != nil {
		return nil, wrapErr("list predictions", err)
	}
	return queryAll(ctx, r.db, "list predictions", stmt, args, scanPrediction)
}

// Count returns the number of stored predictions.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	stmt, args, err := r.dialect.From(historyTable).Count()
	if err != nil {
		return 0, wrapErr("count predictions", err)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, wrapErr("count predictions", err)
	}
	return n, nil
}

// Get loads one record. The bool is false when the id does not exist.
func (r *HistoryRepository) Get(ctx context.Context, id int64) (PredictionRow, bool, error) {
	stmt := "SELECT id, sumpeople, sumkill, sumfall, sumdist_ride, sumdist_walk, teamsize, survival_time, damage, assist, result, confidence, tactics FROM history WHERE id = " + r.dialect.Placeholder(1)
	row, err := scanPrediction(r.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return PredictionRow{}, false, nil
	}
	if err != nil {
		return PredictionRow{}, false, wrapErr("get prediction", err)
	}
	return row, true, nil
}

// Statistics computes the aggregate summary in a single pass. An empty table
// yields all zeros.
func (r *HistoryRepository) Statistics(ctx context.Context) (Statistics, error) {
	ph := r.dialect.Placeholder
	stmt := fmt.Sprintf(`SELECT COUNT(*), AVG(result), MAX(result), MIN(result),
	SUM(CASE WHEN confidence = %s THEN 1 ELSE 0 END),
	SUM(CASE WHEN confidence = %s THEN 1 ELSE 0 END),
	SUM(CASE WHEN confidence = %s THEN 1 ELSE 0 END)
FROM history`, ph(1), ph(2), ph(3))

	var (
		total             int64
		avg, maxV, minV   sql.NullFloat64
		high, medium, low sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, stmt, "high", "medium", "low").
		Scan(&total, &avg, &maxV, &minV, &high, &medium, &low)
	if err != nil {
		return Statistics{}, wrapErr("prediction statistics", err)
	}
	return Statistics{
		TotalPredictions: total,
		AvgWinRate:       math.Round(avg.Float64*100) / 100,
		MaxWinRate:       maxV.Float64,
		MinWinRate:       minV.Float64,
		ConfidenceDistribution: ConfidenceDistribution{
			High:   high.Int64,
			Medium: medium.Int64,
			Low:    low.Int64,
		},
	}, nil
}

func scanPrediction(s rowScanner) (PredictionRow, error) {
	var p PredictionRow
	err := s.Scan(&p.ID, &p.SumPeople, &p.SumKill, &p.SumFall, &p.SumDistRide, &p.SumDistWalk,
		&p.TeamSize, &p.SurvivalTime, &p.Damage, &p.Assist, &p.Result, &p.Confidence, &p.Tactics)
	return p, err
}
