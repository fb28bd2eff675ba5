package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountryTest(t *testing.T, handler http.HandlerFunc) *CountryService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &CountryService{client: srv.Client(), baseURL: srv.URL}
}

func TestCountryLookup_Success(t *testing.T) {
	var gotPath string
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"name": {"common": "France"},
			"capital": ["Paris"],
			"region": "Europe",
			"population": 67391582,
			"flags": {"png": "https://flagcdn.com/w320/fr.png"}
		}]`))
	})

	info, err := svc.Lookup(context.Background(), "France")
	require.NoError(t, err)
	assert.Equal(t, "/France", gotPath)
	assert.Equal(t, "France", info.Name)
	assert.Equal(t, "Paris", info.Capital)
	assert.Equal(t, "Europe", info.Region)
	assert.Equal(t, int64(67391582), info.Population)
	assert.Equal(t, "https://flagcdn.com/w320/fr.png", info.FlagURL)
}

func TestCountryLookup_UsesPartAfterComma(t *testing.T) {
	var gotPath string
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"name": {"common": "Japan"}, "region": "Asia"}]`))
	})

	info, err := svc.Lookup(context.Background(), "Tokio, Japón")
	require.NoError(t, err)
	// "Japón" is translated before hitting the API.
	assert.Equal(t, "/Japan", gotPath)
	assert.Equal(t, "Japan", info.Name)
}

func TestCountryLookup_PrefersExactMatch(t *testing.T) {
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name": {"common": "British Indian Ocean Territory"}, "region": "Africa"},
			{"name": {"common": "India"}, "capital": ["New Delhi"], "region": "Asia"}
		]`))
	})

	info, err := svc.Lookup(context.Background(), "India")
	require.NoError(t, err)
	assert.Equal(t, "India", info.Name)
	assert.Equal(t, "New Delhi", info.Capital)
}

func TestCountryLookup_NotFound(t *testing.T) {
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := svc.Lookup(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestCountryLookup_EmptyName(t *testing.T) {
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty name")
	})

	_, err := svc.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestCountryLookup_UpstreamError(t *testing.T) {
	svc := newCountryTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := svc.Lookup(context.Background(), "France")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCountryNotFound)
}
