package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/f1picks/leaderboard"
)

// Leaderboard returns the ranked standings.
func (h *Handler) Leaderboard(c echo.Context) error {
	entries, err := h.board.Standings(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

type verifyResponse struct {
	Consistent bool                   `json:"consistent"`
	Mismatches []leaderboard.Mismatch `json:"mismatches"`
}

// VerifyLeaderboard checks every running total against stored points.
func (h *Handler) VerifyLeaderboard(c echo.Context) error {
	mismatches, err := h.board.Verify(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if mismatches == nil {
		mismatches = []leaderboard.Mismatch{}
	}
	return c.JSON(http.StatusOK, verifyResponse{Consistent: len(mismatches) == 0, Mismatches: mismatches})
}
