package responses

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rafiakbrr/scrimhub/pkg/apperr"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("team %d", 1), http.StatusNotFound},
		{"invalid argument", apperr.InvalidArgument("bad date"), http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorized("leader only"), http.StatusForbidden},
		{"conflict", apperr.Conflict("tag taken"), http.StatusConflict},
		{"invalid state", apperr.InvalidState("not pending"), http.StatusConflict},
		{"unavailable", apperr.Unavailable("day is full"), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusForError(tc.err))
		})
	}
}
