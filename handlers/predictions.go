package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/logger"
	mw "github.com/padraicbc/f1picks/middleware"
	"github.com/padraicbc/f1picks/models"
	"github.com/padraicbc/f1picks/scoring"
)

type predictionRequest struct {
	Drivers             models.DriverGrid      `json:"drivers"`
	Constructors        models.ConstructorGrid `json:"constructors"`
	BiggestLoser        string                 `json:"biggestLoser" validate:"required,max=64"`
	SprintBiggestLoser  *string                `json:"sprintBiggestLoser" validate:"omitempty,max=64"`
	SprintBiggestGainer *string                `json:"sprintBiggestGainer" validate:"omitempty,max=64"`
	RaceWinner          *string                `json:"raceWinner" validate:"omitempty,max=64"`
	ConstructorWinner   *string                `json:"constructorWinner" validate:"omitempty,max=64"`
}

// prediction builds the model for race. Sprint wildcards are dropped on
// normal weekends.
func (r *predictionRequest) prediction(userID int64, race *models.Race) *models.Prediction {
	p := &models.Prediction{
		UserID:              userID,
		RaceID:              race.ID,
		Drivers:             r.Drivers,
		Constructors:        r.Constructors,
		BiggestLoser:        r.BiggestLoser,
		SprintBiggestLoser:  r.SprintBiggestLoser,
		SprintBiggestGainer: r.SprintBiggestGainer,
		RaceWinner:          r.RaceWinner,
		ConstructorWinner:   r.ConstructorWinner,
	}
	if !race.IsSprint {
		p.SprintBiggestLoser, p.SprintBiggestGainer = nil, nil
	}
	p.Normalize()
	return p
}

// CreatePrediction stores the caller's prediction for a race. Predictions
// are accepted once per race and only before the cutoff.
func (h *Handler) CreatePrediction(c echo.Context) error {
	claims, ok := mw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	raceID, err := idParam(c)
	if err != nil {
		return err
	}
	var req predictionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	race, err := h.store.GetRace(ctx, raceID)
	if err != nil {
		return httpError(err)
	}
	if !race.AcceptsPredictions(h.now()) {
		return httpError(apperr.New(apperr.KindClosed, "create prediction",
			"predictions for %s closed at %s", race.Name, race.CutoffAt.Format("2006-01-02 15:04 MST")))
	}

	p := req.prediction(claims.UserID, race)
	if err := h.store.CreatePrediction(ctx, p); err != nil {
		return httpError(err)
	}
	h.log.Info("prediction stored", logger.Prediction(p.ID), logger.User(p.UserID), logger.Race(p.RaceID))
	return c.JSON(http.StatusCreated, p)
}

// MyPredictions lists the caller's predictions with their points so far.
func (h *Handler) MyPredictions(c echo.Context) error {
	claims, ok := mw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	ps, err := h.store.ListUserPredictions(c.Request().Context(), claims.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ps)
}

// Preview scores a draft prediction against the race's stored result
// without saving anything.
func (h *Handler) Preview(c echo.Context) error {
	claims, ok := mw.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	raceID, err := idParam(c)
	if err != nil {
		return err
	}
	var req predictionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	race, err := h.store.GetRace(ctx, raceID)
	if err != nil {
		return httpError(err)
	}
	res, err := h.store.GetResult(ctx, raceID)
	if err != nil {
		return httpError(err)
	}

	breakdown, err := scoring.Score(race, req.prediction(claims.UserID, race), res)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, breakdown)
}

// AllPredictions is the admin listing of every prediction.
func (h *Handler) AllPredictions(c echo.Context) error {
	ps, err := h.store.ListAllPredictions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	type row struct {
		models.Prediction
		Username string `json:"username"`
		RaceName string `json:"raceName"`
	}
	out := make([]row, len(ps))
	for i, p := range ps {
		out[i] = row{Prediction: p}
		if p.User != nil {
			out[i].Username = p.User.Username
		}
		if p.Race != nil {
			out[i].RaceName = p.Race.Name
		}
	}
	return c.JSON(http.StatusOK, out)
}
