// Package signoff holds the rules that move a player round from open
// to finalized.
package signoff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/padraicbc/juniortour/models"
)

// State of a player round.
type State string

const (
	StateOpen      State = "open"
	StateFinalized State = "finalized"
)

const (
	pngDataURLPrefix = "data:image/png;base64,"
	// MaxSignatureLen caps the signature image data URL.
	MaxSignatureLen = 600000
	maxSignedName   = 120
)

var (
	ErrUnknownRole  = errors.New("unknown signature role")
	ErrInvalidImage = errors.New("invalid signature image")
	ErrMissingName  = errors.New("signer name required")
)

// ParseRole accepts player, marker or td.
func ParseRole(s string) (models.SignatureRole, error) {
	switch r := models.SignatureRole(strings.ToLower(strings.TrimSpace(s))); r {
	case models.RolePlayer, models.RoleMarker, models.RoleTD:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Policy is the role set a round needs before it locks.
type Policy struct {
	RequireTD bool
}

// Required lists the roles in signing order.
func (p Policy) Required() []models.SignatureRole {
	roles := []models.SignatureRole{models.RolePlayer, models.RoleMarker}
	if p.RequireTD {
		roles = append(roles, models.RoleTD)
	}
	return roles
}

// Missing lists required roles not present in have, in signing order.
func (p Policy) Missing(have []models.SignatureRole) []models.SignatureRole {
	present := make(map[models.SignatureRole]bool, len(have))
	for _, r := range have {
		present[r] = true
	}
	missing := []models.SignatureRole{}
	for _, r := range p.Required() {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// Complete reports whether have satisfies the policy.
func (p Policy) Complete(have []models.SignatureRole) bool {
	return len(p.Missing(have)) == 0
}

// Roles extracts the distinct roles of a set of signatures.
func Roles(sigs []models.ScorecardSignature) []models.SignatureRole {
	seen := make(map[models.SignatureRole]bool)
	var out []models.SignatureRole
	for _, s := range sigs {
		if !seen[s.Role] {
			seen[s.Role] = true
			out = append(out, s.Role)
		}
	}
	return out
}

// StateOf is the state of a registration's round.
func StateOf(r *models.Registration, round int) State {
	if r.FinalizedAt(round) != nil {
		return StateFinalized
	}
	return StateOpen
}

// ValidateName trims and checks the typed signer name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingName
	}
	if len(name) > maxSignedName {
		return "", fmt.Errorf("%w: too long", ErrMissingName)
	}
	return name, nil
}

// ValidateImage accepts an empty image or a PNG data URL within size.
func ValidateImage(dataURL string) error {
	if dataURL == "" {
		return nil
	}
	if !strings.HasPrefix(dataURL, pngDataURLPrefix) {
		return fmt.Errorf("%w: not a png data url", ErrInvalidImage)
	}
	if len(dataURL) > MaxSignatureLen {
		return fmt.Errorf("%w: larger than %d characters", ErrInvalidImage, MaxSignatureLen)
	}
	return nil
}
