package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCountryNotFound reports that the external country API had no match.
var ErrCountryNotFound = errors.New("country not found")

// CountryInfo is the subset of country facts shown next to a destination.
type CountryInfo struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Region     string `json:"region"`
	Population int64  `json:"population"`
	FlagURL    string `json:"flag_url"`
}

// CountryService looks up country facts from the public REST Countries API
// (https://restcountries.com). Responses are cached in Redis for a day
// because the data changes rarely and the upstream rate-limits aggressively.
// A nil Redis client disables caching; lookups still work.
type CountryService struct {
	client  *http.Client
	cache   *redis.Client
	baseURL string
}

const countryCacheTTL = 24 * time.Hour

// NewCountryService builds a CountryService. rdb may be nil.
func NewCountryService(rdb *redis.Client) *CountryService {
	return &CountryService{
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   rdb,
		baseURL: "https://restcountries.com/v3.1/name",
	}
}

// nameCorrections maps common Spanish-language country names, as they
// appear in destination records, onto names the API resolves.
var nameCorrections = map[string]string{
	"EE.UU.":       "USA",
	"Reino Unido":  "United Kingdom",
	"Japón":        "Japan",
	"Francia":      "France",
	"Italia":       "Italy",
	"España":       "Spain",
	"Egipto":       "Egypt",
	"Países Bajos": "Netherlands",
	"Perú":         "Peru",
	"México":       "Mexico",
}

// Lookup resolves country facts by name. The name may be a country or a
// "City, Country" destination name, in which case the part after the last
// comma is used.
func (s *CountryService) Lookup(ctx context.Context, name string) (CountryInfo, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, ","); i >= 0 {
		name = strings.TrimSpace(name[i+1:])
	}
	if name == "" {
		return CountryInfo{}, ErrCountryNotFound
	}
	if corrected, ok := nameCorrections[name]; ok {
		name = corrected
	}

	cacheKey := "country:" + strings.ToLower(name)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var info CountryInfo
			if json.Unmarshal(raw, &info) == nil {
				return info, nil
			}
		}
	}

	info, err := s.fetch(ctx, name)
	if err != nil {
		return CountryInfo{}, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(info); err == nil {
			// Cache write failures are ignored; the lookup already succeeded.
			_ = s.cache.Set(ctx, cacheKey, raw, countryCacheTTL).Err()
		}
	}
	return info, nil
}

// restCountry mirrors the fields we read from the API response.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Population int64    `json:"population"`
	Flags      struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

func (s *CountryService) fetch(ctx context.Context, name string) (CountryInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return CountryInfo{}, err
	}
	req.Header.Set("User-Agent", "travel-reservation/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return CountryInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return CountryInfo{}, ErrCountryNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return CountryInfo{}, fmt.Errorf("country api returned status %d", resp.StatusCode)
	}
	var countries []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return CountryInfo{}, err
	}
	if len(countries) == 0 {
		return CountryInfo{}, ErrCountryNotFound
	}
	// Prefer the exact name match; partial searches can return several
	// countries (e.g. "India" also matches "British Indian Ocean Territory").
	best := countries[0]
	for _, c := range countries {
		if strings.EqualFold(c.Name.Common, name) {
			best = c
			break
		}
	}
	info := CountryInfo{
		Name:       best.Name.Common,
		Region:     best.Region,
		Population: best.Population,
		FlagURL:    best.Flags.PNG,
	}
	if len(best.Capital) > 0 {
		info.Capital = best.Capital[0]
	}
	return info, nil
}
