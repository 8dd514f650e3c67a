package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/f1picks/models"
)

type resultRequest struct {
	Drivers             models.DriverGrid      `json:"drivers"`
	Constructors        models.ConstructorGrid `json:"constructors"`
	BiggestLoser        string                 `json:"biggestLoser" validate:"required,max=64"`
	SprintBiggestLoser  *string                `json:"sprintBiggestLoser" validate:"omitempty,max=64"`
	SprintBiggestGainer *string                `json:"sprintBiggestGainer" validate:"omitempty,max=64"`
}

func (r *resultRequest) result(raceID int64) *models.RaceResult {
	return &models.RaceResult{
		RaceID:              raceID,
		Drivers:             r.Drivers,
		Constructors:        r.Constructors,
		BiggestLoser:        r.BiggestLoser,
		SprintBiggestLoser:  r.SprintBiggestLoser,
		SprintBiggestGainer: r.SprintBiggestGainer,
	}
}

// SaveResult stores the official result and scores the race in one go.
func (h *Handler) SaveResult(c echo.Context) error {
	return h.recordResult(c, false)
}

// ReplaceResult corrects a stored result and re-scores the race.
func (h *Handler) ReplaceResult(c echo.Context) error {
	return h.recordResult(c, true)
}

func (h *Handler) recordResult(c echo.Context, replace bool) error {
	raceID, err := idParam(c)
	if err != nil {
		return err
	}
	var req resultRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rep, err := h.ingest.RecordResult(c.Request().Context(), req.result(raceID), replace)
	if err != nil {
		return httpError(err)
	}

	status := http.StatusCreated
	if replace {
		status = http.StatusOK
	}
	return c.JSON(status, rep)
}

// Ingest re-runs scoring for a race against its stored result.
func (h *Handler) Ingest(c echo.Context) error {
	raceID, err := idParam(c)
	if err != nil {
		return err
	}
	rep, err := h.ingest.Ingest(c.Request().Context(), raceID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rep)
}
