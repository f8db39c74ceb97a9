package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
	"github.com/padraicbc/juniortour/models"
)

type pinLoginRequest struct {
	TournamentID uuid.UUID `json:"tournamentId"`
	PIN          string    `json:"pin"`
}

// PINLogin resolves a player PIN to a registration.
func (h *Handler) PINLogin(c echo.Context) error {
	var req pinLoginRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	res, err := h.svc.LoginByPIN(c.Request().Context(), req.TournamentID, req.PIN)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.PlayerLogin
	}{true, res})
}

// Player returns a registration summary.
func (h *Handler) Player(c echo.Context) error {
	id, err := queryUUID(c, "registrationId")
	if err != nil {
		return err
	}
	p, err := h.svc.Player(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK     bool                  `json:"ok"`
		Player *engine.PlayerSummary `json:"player"`
	}{true, p})
}

// Tournaments lists all tournaments, newest first.
func (h *Handler) Tournaments(c echo.Context) error {
	ts, err := h.svc.Tournaments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK          bool                `json:"ok"`
		Tournaments []models.Tournament `json:"tournaments"`
	}{true, ts})
}

// Health pings the store.
func (h *Handler) Health(c echo.Context) error {
	if err := h.svc.Ping(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
