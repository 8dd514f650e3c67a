package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/f1picks/logger"
	"github.com/padraicbc/f1picks/models"
)

type raceRequest struct {
	Name     string    `json:"name" validate:"required,max=128"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
	CutoffAt time.Time `json:"cutoffAt" validate:"required"`
	IsSprint bool      `json:"isSprint"`
}

type sprintRequest struct {
	IsSprint *bool `json:"isSprint" validate:"required"`
}

type raceView struct {
	*models.Race
	Open   bool               `json:"open"`
	Result *models.RaceResult `json:"result,omitempty"`
}

// Races lists the calendar in start order.
func (h *Handler) Races(c echo.Context) error {
	races, err := h.store.ListRaces(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	now := h.now()
	out := make([]raceView, len(races))
	for i := range races {
		out[i] = raceView{Race: &races[i], Open: races[i].AcceptsPredictions(now)}
	}
	return c.JSON(http.StatusOK, out)
}

// Race returns one race together with its result once entered.
func (h *Handler) Race(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	race, err := h.store.GetRace(ctx, id)
	if err != nil {
		return httpError(err)
	}
	res, err := h.store.GetResult(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, raceView{Race: race, Open: race.AcceptsPredictions(h.now()), Result: res})
}

// CreateRace adds a race to the calendar.
func (h *Handler) CreateRace(c echo.Context) error {
	var req raceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	race := &models.Race{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		CutoffAt: req.CutoffAt,
		IsSprint: req.IsSprint,
	}
	if err := h.store.CreateRace(c.Request().Context(), race); err != nil {
		return httpError(err)
	}
	h.log.Info("race created", logger.Race(race.ID), zap.String("name", race.Name))
	return c.JSON(http.StatusCreated, race)
}

// SetSprint flips the sprint flag while the race has no predictions.
func (h *Handler) SetSprint(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req sprintRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.store.SetSprint(ctx, id, *req.IsSprint); err != nil {
		return httpError(err)
	}
	race, err := h.store.GetRace(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, race)
}
