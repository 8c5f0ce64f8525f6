package question

import (
	"fmt"
	"slices"
	"strings"

	"github.com/223nobody/GameAnalysis/internal/validation"
)

const (
	optionCount   = 4
	minGenerate   = 3
	maxGenerate   = 10
	defaultModel  = "deepseek"
	defaultLang   = "go"
	defaultCount  = 3
	minMultiRight = 2
)

var (
	optionLetters   = []string{"A", "B", "C", "D"}
	supportedModels = []string{"deepseek"}
	supportedLangs  = []string{"go", "java", "python", "javascript", "c++", "css", "html"}
)

// Validate runs a record through the structure and type-rule stages and
// returns the first rejection, or nil when the record is accepted.
func Validate(q Question) error {
	if strings.TrimSpace(q.Title) == "" {
		return validation.New(validation.StageStructure, "title_required", "title", "title must not be empty")
	}
	if !q.Type.Valid() {
		return validation.New(validation.StageStructure, "type_invalid", "type",
			fmt.Sprintf("type must be 1, 2 or 3, got %d", q.Type))
	}
	if q.Type.IsSelect() && len(q.Answers) != optionCount {
		return validation.New(validation.StageStructure, "answers_count", "answers",
			fmt.Sprintf("select questions need exactly %d answers, got %d", optionCount, len(q.Answers)))
	}
	if q.Type == Coding && len(q.Answers) > 0 && len(q.Answers) != optionCount {
		return validation.New(validation.StageStructure, "answers_count", "answers",
			fmt.Sprintf("coding questions carry no answers or exactly %d, got %d", optionCount, len(q.Answers)))
	}
	return checkRights(q)
}

func checkRights(q Question) error {
	if q.Type == Coding {
		if len(q.Rights) > 0 {
			return validation.New(validation.StageTypeRules, "rights_forbidden", "rights", "coding questions carry no rights")
		}
		return nil
	}

	seen := make(map[string]bool, len(q.Rights))
	for _, r := range q.Rights {
		if !slices.Contains(optionLetters, r) {
			return validation.New(validation.StageTypeRules, "rights_letter", "rights",
				fmt.Sprintf("right %q is not one of A, B, C, D", r))
		}
		if seen[r] {
			return validation.New(validation.StageTypeRules, "rights_duplicate", "rights",
				fmt.Sprintf("right %q appears more than once", r))
		}
		seen[r] = true
	}

	switch {
	case q.Type == SingleSelect && len(q.Rights) != 1:
		return validation.New(validation.StageTypeRules, "rights_count", "rights",
			fmt.Sprintf("single select needs exactly 1 right, got %d", len(q.Rights)))
	case q.Type == MultiSelect && (len(q.Rights) < minMultiRight || len(q.Rights) > optionCount):
		return validation.New(validation.StageTypeRules, "rights_count", "rights",
			fmt.Sprintf("multi select needs 2 to 4 rights, got %d", len(q.Rights)))
	}
	return nil
}

// ValidateBatch validates every record and attributes the first rejection to
// its position.
func ValidateBatch(qs []Question) error {
	for i, q := range qs {
		if err := Validate(q); err != nil {
			verr, _ := validation.As(err)
			return verr.At(i)
		}
	}
	return nil
}

// NormalizeRequest applies generation defaults and rejects unsupported
// combinations.
func NormalizeRequest(req GenerateRequest) (GenerateRequest, error) {
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		return req, validation.New(validation.StageRequest, "keyword_required", "keyword", "keyword must not be empty")
	}
	if req.Language == "" {
		req.Language = defaultLang
	}
	if req.Type == 0 {
		req.Type = SingleSelect
	}
	if req.Count == 0 {
		req.Count = defaultCount
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	req.Language = strings.ToLower(req.Language)

	switch {
	case !slices.Contains(supportedModels, req.Model):
		return req, validation.New(validation.StageRequest, "model_unsupported", "model",
			fmt.Sprintf("model %q is not supported", req.Model))
	case !slices.Contains(supportedLangs, req.Language):
		return req, validation.New(validation.StageRequest, "language_unsupported", "language",
			fmt.Sprintf("language %q is not supported", req.Language))
	case req.Count < minGenerate || req.Count > maxGenerate:
		return req, validation.New(validation.StageRequest, "count_range", "count",
			fmt.Sprintf("count must be between %d and %d", minGenerate, maxGenerate))
	case !req.Type.Valid():
		return req, validation.New(validation.StageRequest, "type_invalid", "type",
			fmt.Sprintf("type must be 1, 2 or 3, got %d", req.Type))
	}
	return req, nil
}

// ValidateGenerated checks a generated batch against the request that
// produced it. Any bad item rejects the whole batch.
func ValidateGenerated(req GenerateRequest, items []Candidate) ([]Question, error) {
	if len(items) != req.Count {
		return nil, validation.New(validation.StageBatch, "count_mismatch", "questions",
			fmt.Sprintf("expected %d questions, got %d", req.Count, len(items)))
	}

	out := make([]Question, 0, len(items))
	for i, item := range items {
		q := item.ToQuestion(req)
		if err := Validate(q); err != nil {
			verr, _ := validation.As(err)
			return nil, verr.At(i)
		}
		if !q.Type.IsSelect() {
			out = append(out, q)
			continue
		}
		for j, answer := range q.Answers {
			prefix := optionLetters[j] + ":"
			if !strings.HasPrefix(answer, prefix) {
				return nil, validation.New(validation.StageBatch, "option_prefix", "answers",
					fmt.Sprintf("option %d must start with %q", j+1, prefix)).At(i)
			}
		}
		if q.Type == MultiSelect && !slices.IsSorted(q.Rights) {
			return nil, validation.New(validation.StageBatch, "rights_order", "rights",
				fmt.Sprintf("rights must be in ascending order, got %v", q.Rights)).At(i)
		}
		out = append(out, q)
	}
	return out, nil
}
