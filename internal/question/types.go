package question

import (
	"github.com/223nobody/GameAnalysis/internal/db/query"
)

// Type is the question kind stored in the type column.
type Type int

const (
	SingleSelect Type = 1
	MultiSelect  Type = 2
	Coding       Type = 3
)

// Valid reports whether t is one of the known kinds.
func (t Type) Valid() bool {
	return t == SingleSelect || t == MultiSelect || t == Coding
}

// IsSelect reports whether answers and rights are expected.
func (t Type) IsSelect() bool {
	return t == SingleSelect || t == MultiSelect
}

func (t Type) String() string {
	switch t {
	case SingleSelect:
		return "single_select"
	case MultiSelect:
		return "multi_select"
	case Coding:
		return "coding"
	default:
		return "unknown"
	}
}

// Question is the stored record as clients see it.
type Question struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Type     Type     `json:"type"`
	Language string   `json:"language"`
	Answers  []string `json:"answers"`
	Rights   []string `json:"rights"`
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	Type     *Type
	Language string
	Search   string
}

// ListResult is one page of questions plus the unpaged match count.
type ListResult struct {
	Questions  []Question       `json:"questions"`
	Total      int64            `json:"total"`
	Pagination query.Pagination `json:"-"`
}

// GenerateRequest asks the generator for a batch of questions.
type GenerateRequest struct {
	Keyword  string
	Model    string
	Language string
	Type     Type
	Count    int
}

// Candidate is one generated item before it becomes a stored record.
type Candidate struct {
	Title   string   `json:"title"`
	Answers []string `json:"answers"`
	Rights  []string `json:"rights"`
}

// ToQuestion fills in the request-level fields a candidate does not carry.
func (c Candidate) ToQuestion(req GenerateRequest) Question {
	return Question{
		Title:    c.Title,
		Type:     req.Type,
		Language: req.Language,
		Answers:  orEmpty(c.Answers),
		Rights:   orEmpty(c.Rights),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
