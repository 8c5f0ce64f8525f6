// Package history records PUBG win predictions and the tactical advice that
// can be attached to them.
package history

import (
	"math"
	"time"

	"github.com/223nobody/GameAnalysis/internal/db/query"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
)

// Confidence labels how decisive a predicted probability is.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

func (c Confidence) Valid() bool {
	return c == High || c == Medium || c == Low
}

// ConfidenceFor buckets a win probability. Values far from a coin flip are
// high, values near 0.5 are low.
func ConfidenceFor(p float64) Confidence {
	switch {
	case p > 0.7 || p < 0.3:
		return High
	case p >= 0.4 && p <= 0.6:
		return Low
	default:
		return Medium
	}
}

// Percentage converts a probability to a percentage rounded to 2 places.
func Percentage(p float64) float64 {
	return roundTo(p*100, 2)
}

func roundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}

// Prediction is a stored history record. Field names follow the table.
type Prediction struct {
	ID           int64      `json:"id"`
	SumPeople    int64      `json:"sumpeople"`
	SumKill      int64      `json:"sumkill"`
	SumFall      int64      `json:"sumfall"`
	SumDistRide  int64      `json:"sumdist_ride"`
	SumDistWalk  int64      `json:"sumdist_walk"`
	TeamSize     int64      `json:"teamsize"`
	SurvivalTime int64      `json:"survival_time"`
	Damage       int64      `json:"damage"`
	Assist       int64      `json:"assist"`
	Result       float64    `json:"result"`
	Confidence   Confidence `json:"confidence"`
	Tactics      *string    `json:"tactics"`
}

// Input is the match summary a client submits together with the model's
// win probability.
type Input struct {
	GameSize          *float64 `json:"game_size" validate:"required,min=50,max=100"`
	PartySize         *float64 `json:"party_size" validate:"required,min=1,max=4"`
	PlayerKills       *float64 `json:"player_kills" validate:"required,min=0,max=50"`
	PlayerDmg         *float64 `json:"player_dmg" validate:"required,min=0,max=10000"`
	PlayerDBNO        *float64 `json:"player_dbno" validate:"required,min=0,max=50"`
	PlayerAssists     *float64 `json:"player_assists" validate:"required,min=0,max=20"`
	PlayerSurviveTime *float64 `json:"player_survive_time" validate:"required,min=0,max=3600"`
	PlayerDistWalk    *float64 `json:"player_dist_walk" validate:"required,min=0,max=20000"`
	PlayerDistRide    *float64 `json:"player_dist_ride" validate:"required,min=0,max=20000"`
	Probability       *float64 `json:"probability" validate:"required,min=0,max=1"`
}

// Outcome is returned after a prediction has been recorded.
type Outcome struct {
	RecordID       int64      `json:"record_id"`
	WinProbability float64    `json:"win_probability"`
	Percentage     float64    `json:"percentage"`
	Confidence     Confidence `json:"confidence"`
}

// Filter narrows a history listing.
type Filter struct {
	Confidence Confidence
}

// Page is one page of predictions.
type Page struct {
	History    []Prediction     `json:"history"`
	Pagination query.Pagination `json:"pagination"`
}

// Window is the legacy limit/offset listing.
type Window struct {
	History    []Prediction `json:"history"`
	TotalCount int64        `json:"total_count"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	HasMore    bool         `json:"has_more"`
}

// Stats is the aggregate summary of every stored prediction.
type Stats = repository.Statistics

// Advisory is generated advice not attached to any prediction.
type Advisory struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AdvisoryPage is one page of advisories.
type AdvisoryPage struct {
	Advisories []Advisory       `json:"advisories"`
	Pagination query.Pagination `json:"pagination"`
}

// Advice operations.
const (
	OperationCreated = "created"
	OperationUpdated = "updated"
)

// AdviceResult reports generated advice and where it was stored. A storage
// failure leaves DatabaseSaved false without failing the request.
type AdviceResult struct {
	Success       bool   `json:"success"`
	Advice        string `json:"advice"`
	Message       string `json:"message"`
	DatabaseSaved bool   `json:"database_saved"`
	RecordID      *int64 `json:"record_id"`
	Operation     string `json:"operation"`
}

func toRow(in Input) repository.PredictionRow {
	p := *in.Probability
	return repository.PredictionRow{
		SumPeople:    int64(*in.GameSize),
		SumKill:      int64(*in.PlayerKills),
		SumFall:      int64(*in.PlayerDBNO),
		SumDistRide:  int64(*in.PlayerDistRide),
		SumDistWalk:  int64(*in.PlayerDistWalk),
		TeamSize:     int64(*in.PartySize),
		SurvivalTime: int64(*in.PlayerSurviveTime),
		Damage:       int64(*in.PlayerDmg),
		Assist:       int64(*in.PlayerAssists),
		Result:       Percentage(p),
		Confidence:   string(ConfidenceFor(p)),
	}
}

func fromRow(r repository.PredictionRow) Prediction {
	p := Prediction{
		ID:           r.ID,
		SumPeople:    r.SumPeople,
		SumKill:      r.SumKill,
		SumFall:      r.SumFall,
		SumDistRide:  r.SumDistRide,
		SumDistWalk:  r.SumDistWalk,
		TeamSize:     r.TeamSize,
		SurvivalTime: r.SurvivalTime,
		Damage:       r.Damage,
		Assist:       r.Assist,
		Result:       r.Result,
		Confidence:   Confidence(r.Confidence),
	}
	if r.Tactics.Valid {
		t := r.Tactics.String
		p.Tactics = &t
	}
	return p
}

func fromRows(rows []repository.PredictionRow) []Prediction {
	out := make([]Prediction, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}
