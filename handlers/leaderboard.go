package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
	"github.com/padraicbc/juniortour/leaderboard"
	"github.com/padraicbc/juniortour/models"
)

// Leaderboard ranks a round, optionally sliced by holes, gender and age group.
func (h *Handler) Leaderboard(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	var f leaderboard.Filter
	if f.Holes, err = queryInt(c, "holes", 0); err != nil {
		return err
	}
	if f.Holes != 0 && !models.ValidHoles(f.Holes) {
		return fmt.Errorf("%w: holes must be 9 or 18", engine.ErrValidation)
	}
	if g := c.QueryParam("gender"); g != "" {
		gender, ok := models.ParseGender(g)
		if !ok {
			return fmt.Errorf("%w: gender must be Boys or Girls", engine.ErrValidation)
		}
		f.Gender = gender
	}
	f.AgeGroup = strings.TrimSpace(c.QueryParam("ageGroup"))

	res, err := h.svc.Leaderboard(c.Request().Context(), engine.LeaderboardInput{
		TournamentID: tid,
		Round:        round,
		Filter:       f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.LeaderboardResult
	}{true, res})
}
