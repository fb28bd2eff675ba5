package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservation/internal/model"
	"github.com/iliyamo/travel-reservation/internal/repository"
	"github.com/iliyamo/travel-reservation/internal/service"
)

// BrowseHandler serves the public catalog: destinations, packages and
// destination country info. None of these endpoints require auth.
type BrowseHandler struct {
	Destinations *repository.DestinationRepo
	Packages     *repository.PackageRepo
	Countries    *service.CountryService
}

func NewBrowseHandler(d *repository.DestinationRepo, p *repository.PackageRepo, c *service.CountryService) *BrowseHandler {
	return &BrowseHandler{Destinations: d, Packages: p, Countries: c}
}

// ListDestinations returns all destinations, or those matching ?q= when
// a search term is present.
func (h *BrowseHandler) ListDestinations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := strings.TrimSpace(c.QueryParam("q"))
	var (
		list []model.Destination
		err  error
	)
	if q != "" {
		list, err = h.Destinations.SearchByName(ctx, q)
	} else {
		list, err = h.Destinations.All(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list destinations failed"})
	}
	if list == nil {
		list = []model.Destination{}
	}
	return c.JSON(http.StatusOK, echo.Map{"destinations": list})
}

// GetDestination returns a single destination by id.
func (h *BrowseHandler) GetDestination(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Destinations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDestinationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "destination not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get destination failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// ListPackages returns every package with its member destinations,
// remaining seats and total cost.
func (h *BrowseHandler) ListPackages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Packages.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list packages failed"})
	}
	if list == nil {
		list = []repository.PackageDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"packages": list})
}

// GetPackage returns a single package by id.
func (h *BrowseHandler) GetPackage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Packages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "package not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get package failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// CountryInfo enriches a destination with country facts from the
// external countries API. The destination name doubles as the lookup
// key ("Paris, France" resolves against "France").
func (h *BrowseHandler) CountryInfo(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	d, err := h.Destinations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDestinationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "destination not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get destination failed"})
	}

	info, err := h.Countries.Lookup(ctx, d.Name)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "country info not found"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "country lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"destination": d.Name,
		"country":     info,
	})
}
