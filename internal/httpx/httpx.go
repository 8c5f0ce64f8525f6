// Package httpx holds the JSON request and response helpers shared by the
// HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
	"github.com/223nobody/GameAnalysis/internal/validation"
	apierrors "github.com/223nobody/GameAnalysis/pkg/http/errors"
)

const maxBodyBytes = 1 << 20

// Envelope is the {code, msg, data} wrapper used by the question routes.
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteOK writes a successful envelope.
func WriteOK(w http.ResponseWriter, msg string, data any) {
	if msg == "" {
		msg = "success"
	}
	WriteJSON(w, http.StatusOK, Envelope{Code: 0, Msg: msg, Data: data})
}

// DecodeJSON reads a JSON body into dst and runs its validate tags.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.New(validation.StageRequest, "body_required", "", "request body is empty")
		}
		return validation.New(validation.StageRequest, "body_malformed", "", fmt.Sprintf("malformed JSON body: %v", err))
	}
	return Struct(dst)
}

// Struct runs validate tags on v and converts the first failure.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Field()
		return validation.New(validation.StageRequest, fe.Tag(), field, describe(field, fe))
	}
	return validation.New(validation.StageRequest, "invalid", "", err.Error())
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}

// QueryInt reads an optional integer query parameter. Missing or unparsable
// values yield def.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// QueryIntPtr reads an optional integer query parameter, nil when absent.
func QueryIntPtr(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// WriteError maps a domain error onto a status code and error body. Server
// side failures are logged; client mistakes are not.
func WriteError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if verr, ok := validation.As(err); ok {
		resp := apierrors.ErrorResponse{
			Error:   apierrors.ErrCodeValidationFailed,
			Message: verr.Message,
			Field:   verr.Field,
			Details: map[string]any{"stage": verr.Stage, "rule": verr.Rule},
		}
		if verr.Index >= 0 {
			resp.Details["index"] = verr.Index
		}
		WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	switch {
	case errors.Is(err, repository.ErrConstraintViolation):
		apierrors.RespondError(w, http.StatusUnprocessableEntity, apierrors.ErrCodeConstraintViolation,
			"record violates a storage constraint")
	case errors.Is(err, ai.ErrNotConfigured):
		apierrors.RespondServiceUnavailable(w, apierrors.ErrCodeGeneratorUnavailable, err.Error())
	case errors.Is(err, ai.ErrGeneration):
		logger.Error().Err(err).Msg("generation failed")
		apierrors.RespondError(w, http.StatusBadGateway, apierrors.ErrCodeGenerationFailed, "text generation failed")
	default:
		var serr *repository.StorageError
		if errors.As(err, &serr) {
			logger.Error().Err(err).Str("op", serr.Op).Msg("storage failure")
			apierrors.RespondError(w, http.StatusInternalServerError, apierrors.ErrCodeStorageFailed, "storage operation failed")
			return
		}
		logger.Error().Err(err).Msg("unhandled error")
		apierrors.RespondInternalError(w, "internal error")
	}
}
