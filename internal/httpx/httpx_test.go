package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/ai"
	"github.com/223nobody/GameAnalysis/internal/db/repository"
	"github.com/223nobody/GameAnalysis/internal/validation"
	apierrors "github.com/223nobody/GameAnalysis/pkg/http/errors"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"omitempty,min=3,max=10"`
}

func TestDecodeJSON(t *testing.T) {
	var s sample
	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":4}`)), &s)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "x", Count: 4}, s)

	cases := []struct {
		body  string
		rule  string
		field string
	}{
		{"", "body_required", ""},
		{`{"name":`, "body_malformed", ""},
		{`{"count":4}`, "required", "name"},
		{`{"name":"x","count":11}`, "max", "count"},
	}
	for _, tc := range cases {
		var s sample
		err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)), &s)
		verr, ok := validation.As(err)
		require.True(t, ok, tc.body)
		assert.Equal(t, tc.rule, verr.Rule, tc.body)
		assert.Equal(t, tc.field, verr.Field, tc.body)
		assert.Equal(t, validation.StageRequest, verr.Stage)
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&size=abc", nil)
	assert.Equal(t, 3, QueryInt(r, "page", 1))
	assert.Equal(t, 10, QueryInt(r, "size", 10))
	assert.Equal(t, 7, QueryInt(r, "missing", 7))
	assert.Nil(t, QueryIntPtr(r, "missing"))
	assert.Nil(t, QueryIntPtr(r, "size"))
	require.NotNil(t, QueryIntPtr(r, "page"))
	assert.Equal(t, 3, *QueryIntPtr(r, "page"))
}

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK(rec, "", map[string]int{"id": 1})
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":0,"msg":"success","data":{"id":1}}`, rec.Body.String())
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validation.New(validation.StageBatch, "rights_order", "rights", "out of order").At(2), http.StatusBadRequest, apierrors.ErrCodeValidationFailed},
		{"constraint", &repository.ConstraintError{Op: "insert", Err: errors.New("CHECK failed")}, http.StatusUnprocessableEntity, apierrors.ErrCodeConstraintViolation},
		{"not configured", fmt.Errorf("advice: %w", ai.ErrNotConfigured), http.StatusServiceUnavailable, apierrors.ErrCodeGeneratorUnavailable},
		{"generation", fmt.Errorf("%w: timeout", ai.ErrGeneration), http.StatusBadGateway, apierrors.ErrCodeGenerationFailed},
		{"storage", &repository.StorageError{Op: "list", Err: errors.New("disk full")}, http.StatusInternalServerError, apierrors.ErrCodeStorageFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apierrors.ErrCodeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, zerolog.Nop(), tc.err)
			assert.Equal(t, tc.status, rec.Code)
			var body apierrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
		})
	}

	rec := httptest.NewRecorder()
	WriteError(rec, zerolog.Nop(), validation.New(validation.StageBatch, "rights_order", "rights", "out of order").At(2))
	var body apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rights", body.Field)
	assert.Equal(t, float64(2), body.Details["index"])
	assert.Equal(t, "batch", body.Details["stage"])
}
