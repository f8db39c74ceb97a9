package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
	mw "github.com/padraicbc/juniortour/middleware"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/scoring"
)

type holeEntryRequest struct {
	TournamentID uuid.UUID `json:"tournamentId"`
	Round        int       `json:"round"`
	Hole         int       `json:"hole"`
	RecordedBy   uuid.UUID `json:"recordedBy"`
	ForPlayer    uuid.UUID `json:"forPlayer"`
	Strokes      int       `json:"strokes"`
	RuleBall     bool      `json:"ruleBall"`
	RuleNote     string    `json:"ruleNote"`
}

// SubmitHoleEntry stores one stroke count.
func (h *Handler) SubmitHoleEntry(c echo.Context) error {
	var req holeEntryRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	res, err := h.svc.SubmitHoleEntry(c.Request().Context(), scoring.Submission{
		TournamentID: req.TournamentID,
		Round:        req.Round,
		Hole:         req.Hole,
		RecordedBy:   req.RecordedBy,
		ForPlayer:    req.ForPlayer,
		Strokes:      req.Strokes,
		RuleBall:     req.RuleBall,
		RuleNote:     req.RuleNote,
	})
	if err != nil {
		return err
	}
	h.cache.Invalidate(c.Request().Context(), req.TournamentID.String())
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.HoleEntryResult
	}{true, res})
}

// HoleStatus reports the confirmation state of one hole.
func (h *Handler) HoleStatus(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	rid, err := queryUUID(c, "registrationId")
	if err != nil {
		return err
	}
	hole, err := queryInt(c, "hole", 0)
	if err != nil {
		return err
	}
	st, err := h.svc.HoleStatus(c.Request().Context(), tid, round, hole, rid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*scoring.HoleStatus
	}{true, st})
}

type signRequest struct {
	TournamentID     uuid.UUID `json:"tournamentId"`
	RegistrationID   uuid.UUID `json:"registrationId"`
	Round            int       `json:"round"`
	Role             string    `json:"role"`
	SignedName       string    `json:"signedName"`
	SignatureDataURL string    `json:"signatureDataUrl"`
	TDPin            string    `json:"tdPin"`
}

// SignRound records a signature and finalizes the round when complete.
func (h *Handler) SignRound(c echo.Context) error {
	var req signRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	res, err := h.svc.SignRound(c.Request().Context(), engine.SignRoundInput{
		TournamentID:     req.TournamentID,
		RegistrationID:   req.RegistrationID,
		Round:            req.Round,
		Role:             req.Role,
		SignedName:       req.SignedName,
		SignatureDataURL: req.SignatureDataURL,
		DirectorPIN:      mw.DirectorPIN(c, req.TDPin),
		UserAgent:        c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	h.cache.Invalidate(c.Request().Context(), req.TournamentID.String())
	return c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*engine.SignRoundResult
	}{true, res})
}

// Scorecard downloads the official document of a finalized round.
func (h *Handler) Scorecard(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	rid, err := queryUUID(c, "registrationId")
	if err != nil {
		return err
	}
	doc, err := h.svc.RenderScorecard(c.Request().Context(), tid, rid, round)
	if err != nil {
		return err
	}
	return attachment(c, doc.Filename, doc.ContentType, doc.Body)
}

// RoundScorecards downloads every finalized card of a round as a workbook.
func (h *Handler) RoundScorecards(c echo.Context) error {
	tid, round, err := roundQuery(c)
	if err != nil {
		return err
	}
	data, err := h.svc.RoundScorecards(c.Request().Context(), tid, round, mw.DirectorPIN(c, ""))
	if err != nil {
		return err
	}
	return attachment(c, fmt.Sprintf("scorecards_R%d.xlsx", round), render.ContentTypeXLSX, data)
}
