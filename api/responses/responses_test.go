package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteSuccess(rec, map[string]string{"status": "ok"})

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Data["status"])
}

func TestWriteErrorPassesThroughClientMessages(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeNotFound, "image not found"))

	require.Equal(t, 404, rec.Code)

	var payload types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeNotFound), payload.Error.Code)
	assert.Equal(t, "image not found", payload.Error.Message)
}

func TestWriteErrorMasksInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	cause := errors.New("pq: connection refused")
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "persist image"))

	require.Equal(t, 500, rec.Code)

	var payload types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeInternal), payload.Error.Code)
	assert.Equal(t, "internal server error", payload.Error.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, errors.New("boom"))

	require.Equal(t, 500, rec.Code)

	var payload types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeInternal), payload.Error.Code)
}

func TestWriteErrorIncludesValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]any{"prompt": "prompt is required"})
	WriteError(context.Background(), nil, rec, err)

	require.Equal(t, 400, rec.Code)

	var payload struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "prompt is required", payload.Error.Details["prompt"])
}
