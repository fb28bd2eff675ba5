package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-reservation/internal/service"
)

func newEchoContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBookingError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Reason: "quantity must be a positive number"}, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"no seats", service.ErrNoSeats, http.StatusConflict},
		{"transaction", service.ErrTransaction, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newEchoContext(t)
			require.NoError(t, bookingError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestBookingError_WrappedTransactionError(t *testing.T) {
	c, rec := newEchoContext(t)
	wrapped := fmt.Errorf("%w: deadlock", service.ErrTransaction)
	require.NoError(t, bookingError(c, wrapped))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetUserID_AcceptsJWTNumericClaim(t *testing.T) {
	c, _ := newEchoContext(t)
	// JSON numbers land as float64 after JWT parsing.
	c.Set("user_id", float64(42))

	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestGetUserID_MissingClaim(t *testing.T) {
	c, _ := newEchoContext(t)
	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	c, _ := newEchoContext(t)
	c.SetParamNames("id")
	c.SetParamValues("17")
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)

	c.SetParamValues("0")
	_, ok = pathID(c, "id")
	assert.False(t, ok)

	c.SetParamValues("abc")
	_, ok = pathID(c, "id")
	assert.False(t, ok)
}
