package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleetquote/internal/xerrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
		stage  string
	}{
		{"validation", xerrors.Invalid("passengers", "too many"), http.StatusBadRequest, "passengers", ""},
		{"wrapped validation", fmt.Errorf("estimate: %w", xerrors.Invalid("route", "missing")), http.StatusBadRequest, "route", ""},
		{"calculation", xerrors.Calculation("fuel", "zero efficiency", nil), http.StatusUnprocessableEntity, "", "fuel"},
		{"invalid input sentinel", fmt.Errorf("bad id: %w", xerrors.ErrInvalidInput), http.StatusBadRequest, "", ""},
		{"not found", xerrors.Wrap(xerrors.ErrNotFound, "load vehicle"), http.StatusNotFound, "", ""},
		{"forbidden", xerrors.ErrForbidden, http.StatusForbidden, "", ""},
		{"conflict", xerrors.ErrConflict, http.StatusConflict, "", ""},
		{"unknown", errors.New("socket closed"), http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.field, body.Field)
			assert.Equal(t, tt.stage, body.Stage)
			if tt.status == http.StatusInternalServerError {
				assert.Empty(t, body.Error)
			}
		})
	}
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, 0, "ok", gin.H{"a": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok","data":{"a":1}}`, w.Body.String())
}
