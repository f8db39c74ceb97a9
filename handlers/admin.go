package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
	"github.com/padraicbc/juniortour/models"
)

type createTournamentRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	Location  string `json:"location"`
}

// CreateTournament adds a tournament.
func (h *Handler) CreateTournament(c echo.Context) error {
	var req createTournamentRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	t, err := h.svc.CreateTournament(c.Request().Context(), engine.CreateTournamentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, struct {
		OK         bool               `json:"ok"`
		Tournament *models.Tournament `json:"tournament"`
	}{true, t})
}

type setParsRequest struct {
	// Pars maps hole number to par.
	Pars map[string]int `json:"pars"`
}

// SetPars upserts the pars of a tournament's holes.
func (h *Handler) SetPars(c echo.Context) error {
	tid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fmt.Errorf("%w: invalid tournament id", engine.ErrValidation)
	}
	var req setParsRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	pars := make(map[int]int, len(req.Pars))
	for k, v := range req.Pars {
		hole, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("%w: hole %q is not a number", engine.ErrValidation, k)
		}
		pars[hole] = v
	}
	got, err := h.svc.SetPars(c.Request().Context(), tid, pars)
	if err != nil {
		return err
	}
	h.cache.Invalidate(c.Request().Context(), tid.String())
	return c.JSON(http.StatusOK, struct {
		OK   bool        `json:"ok"`
		Pars map[int]int `json:"pars"`
	}{true, got})
}

type registrationRequest struct {
	TournamentID uuid.UUID `json:"tournamentId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Birthdate    string    `json:"birthdate"`
	Nation       string    `json:"nation"`
	Gender       string    `json:"gender"`
	Hcp          *float64  `json:"hcp"`
	Holes        int       `json:"holes"`
	HomeClub     string    `json:"homeClub"`
}

// AddRegistration enters a player and returns the generated PIN.
func (h *Handler) AddRegistration(c echo.Context) error {
	var req registrationRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	r, err := h.svc.AddRegistration(c.Request().Context(), engine.RegistrationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, struct {
		OK           bool                 `json:"ok"`
		Registration *models.Registration `json:"registration"`
		PIN          string               `json:"pin"`
	}{true, r, r.PlayerPIN})
}
