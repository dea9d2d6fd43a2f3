package lifecycle_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/easyfittrack/fittrack/internal/app/system/lifecycle"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{lifecycle.ErrMissingDuration, http.StatusBadRequest},
		{lifecycle.ErrInvalidDuration, http.StatusBadRequest},
		{lifecycle.ErrForbidden, http.StatusForbidden},
		{lifecycle.ErrNotFound, http.StatusNotFound},
		{lifecycle.ErrAlreadyAffiliated, http.StatusConflict},
		{lifecycle.ErrDuplicatePending, http.StatusConflict},
		{lifecycle.ErrAlreadyResolved, http.StatusConflict},
		{lifecycle.ErrNotAffiliated, http.StatusConflict},
		{errors.New("database exploded"), http.StatusInternalServerError},
		// Wrapped sentinels still map.
		{fmt.Errorf("resolving: %w", lifecycle.ErrAlreadyResolved), http.StatusConflict},
	}
	for _, tt := range tests {
		if got := lifecycle.HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}
