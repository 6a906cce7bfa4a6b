package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{fmt.Errorf("%w: sales order 9", ErrNotFound), http.StatusNotFound, "resource not found: sales order 9"},
		{fmt.Errorf("%w: bloodGroup: is required", ErrValidation), http.StatusBadRequest, "validation failed: bloodGroup: is required"},
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		RespondError(rr, tt.err)

		assert.Equal(t, tt.status, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		var p ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
		assert.Equal(t, tt.status, p.Status)
		assert.Equal(t, tt.detail, p.Detail)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		ID string `json:"id"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"IF-1"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "IF-1", dst.ID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.EqualError(t, DecodeJSON(req, &dst), "empty request body")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"a"}{"id":"b"}`))
	assert.Error(t, DecodeJSON(req, &dst))
}
