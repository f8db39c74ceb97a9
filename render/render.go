// Package render builds official scorecard documents through an external
// renderer and writes the spreadsheet exports.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxDocumentSize = 20 << 20
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("renderer not configured")

// Signature is a signer shown on the card.
type Signature struct {
	Role     models.SignatureRole `json:"role"`
	Name     string               `json:"name"`
	SignedAt time.Time            `json:"signedAt"`
	Image    string               `json:"image,omitempty"`
}

// Scorecard is everything printed on an official card.
type Scorecard struct {
	TournamentID   string       `json:"tournamentId"`
	TournamentName string       `json:"tournamentName"`
	Location       string       `json:"location"`
	Date           time.Time    `json:"date"`
	Round          int          `json:"round"`
	RegistrationID string       `json:"registrationId"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	HomeClub       string       `json:"homeClub"`
	Nation         string       `json:"nation"`
	Hcp            *float64     `json:"hcp"`
	Holes          int          `json:"holes"`
	AgeGroup       string       `json:"ageGroup"`
	FlightNumber   *int         `json:"flightNumber,omitempty"`
	MarkerName     string       `json:"markerName"`
	Card           scoring.Card `json:"card"`
	Signatures     []Signature  `json:"signatures"`
	FinalizedAt    *time.Time   `json:"finalizedAt"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename is a filesystem-safe name for the card's PDF.
func (s Scorecard) Filename() string {
	name := unsafeName.ReplaceAllString(s.LastName+"_"+s.FirstName, "")
	if name == "" || name == "_" {
		name = s.RegistrationID
	}
	return fmt.Sprintf("scorecard_R%d_%s.pdf", s.Round, name)
}

// Document is a rendered file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer produces the official document for a card.
type Renderer interface {
	Render(ctx context.Context, card Scorecard) (*Document, error)
}

// Disabled is the renderer used when no endpoint is configured.
type Disabled struct{}

func (Disabled) Render(context.Context, Scorecard) (*Document, error) {
	return nil, ErrNotConfigured
}

// HTTPRenderer posts the card as JSON and expects the PDF bytes back.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

// NewHTTPRenderer returns a renderer for url. An empty url yields Disabled.
func NewHTTPRenderer(url string, timeout time.Duration) Renderer {
	if strings.TrimSpace(url) == "" {
		return Disabled{}
	}
	return &HTTPRenderer{url: url, client: &http.Client{Timeout: timeout}}
}

func (r *HTTPRenderer) Render(ctx context.Context, card Scorecard) (*Document, error) {
	body, err := json.Marshal(card)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", ContentTypePDF)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("renderer status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	pdf, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("renderer body: %w", err)
	}
	if len(pdf) > maxDocumentSize {
		return nil, fmt.Errorf("renderer document exceeds %d bytes", maxDocumentSize)
	}
	if len(pdf) == 0 {
		return nil, errors.New("renderer returned an empty document")
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = ContentTypePDF
	}
	return &Document{Filename: card.Filename(), ContentType: ct, Body: pdf}, nil
}
