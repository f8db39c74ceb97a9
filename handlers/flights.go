package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
	mw "github.com/padraicbc/juniortour/middleware"
	"github.com/padraicbc/juniortour/render"
)

type generateFlightsRequest struct {
	TournamentID uuid.UUID `json:"tournamentId"`
	Round        int       `json:"round"`
	TDPin        string    `json:"tdPin"`
}

// GenerateFlights replaces the flights of a round.
func (h *Handler) GenerateFlights(c echo.Context) error {
	var req generateFlightsRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	res, err := h.svc.GenerateFlights(c.Request().Context(), engine.GenerateFlightsInput{
		TournamentID: req.TournamentID,
		Round:        req.Round,
		DirectorPIN:  mw.DirectorPIN(c, req.TDPin),
	})
	if err != nil {
		return err
	}
	h.cache.Invalidate(c.Request().Context(), req.TournamentID.String())
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.GenerateFlightsResult
	}{true, res})
}

type assignStartTimesRequest struct {
	TournamentID    uuid.UUID `json:"tournamentId"`
	Round           int       `json:"round"`
	StartTime       string    `json:"startTime"`
	IntervalMinutes *int      `json:"intervalMinutes"`
	Overwrite       bool      `json:"overwrite"`
	TDPin           string    `json:"tdPin"`
}

// AssignStartTimes staggers tee times over a round's flights.
func (h *Handler) AssignStartTimes(c echo.Context) error {
	var req assignStartTimesRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	res, err := h.svc.AssignStartTimes(c.Request().Context(), engine.AssignStartTimesInput{
		TournamentID:    req.TournamentID,
		Round:           req.Round,
		StartTime:       req.StartTime,
		IntervalMinutes: req.IntervalMinutes,
		Overwrite:       req.Overwrite,
		DirectorPIN:     mw.DirectorPIN(c, req.TDPin),
	})
	if err != nil {
		return err
	}
	h.cache.Invalidate(c.Request().Context(), req.TournamentID.String())
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.AssignStartTimesResult
	}{true, res})
}

// ListFlights returns the startlist of a round.
func (h *Handler) ListFlights(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	fl, err := h.svc.ListFlights(c.Request().Context(), tid, round)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK      bool                `json:"ok"`
		Round   int                 `json:"round"`
		Flights []engine.FlightView `json:"flights"`
	}{true, round, fl})
}

// Startlist downloads the startlist workbook.
func (h *Handler) Startlist(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	data, err := h.svc.Startlist(c.Request().Context(), tid, round, mw.DirectorPIN(c, ""))
	if err != nil {
		return err
	}
	return attachment(c, fmt.Sprintf("startlist_R%d.xlsx", round), render.ContentTypeXLSX, data)
}

// PlayerFlight returns the flight a registration plays in.
func (h *Handler) PlayerFlight(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	rid, err := queryUUID(c, "registrationId")
	if err != nil {
		return err
	}
	v, err := h.svc.PlayerFlight(c.Request().Context(), tid, round, rid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.PlayerFlightView
	}{true, v})
}

func attachment(c echo.Context, filename, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}
