package signoff

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/juniortour/models"
)

func TestPolicy_Missing(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		have   []models.SignatureRole
		want   []models.SignatureRole
	}{
		{"nothing signed", Policy{}, nil, []models.SignatureRole{models.RolePlayer, models.RoleMarker}},
		{"player alone", Policy{}, []models.SignatureRole{models.RolePlayer}, []models.SignatureRole{models.RoleMarker}},
		{"player and marker", Policy{}, []models.SignatureRole{models.RoleMarker, models.RolePlayer}, []models.SignatureRole{}},
		{"td alone does not count", Policy{}, []models.SignatureRole{models.RoleTD}, []models.SignatureRole{models.RolePlayer, models.RoleMarker}},
		{"td required", Policy{RequireTD: true}, []models.SignatureRole{models.RolePlayer, models.RoleMarker}, []models.SignatureRole{models.RoleTD}},
		{"all three", Policy{RequireTD: true}, []models.SignatureRole{models.RoleTD, models.RolePlayer, models.RoleMarker}, []models.SignatureRole{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Missing(tt.have)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, tt.policy.Complete(tt.have))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"player", "Marker", " td "} {
		_, err := ParseRole(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseRole("caddie")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoles_Distinct(t *testing.T) {
	sigs := []models.ScorecardSignature{{Role: models.RolePlayer}, {Role: models.RoleMarker}, {Role: models.RolePlayer}}
	assert.Equal(t, []models.SignatureRole{models.RolePlayer, models.RoleMarker}, Roles(sigs))
}

func TestStateOf(t *testing.T) {
	now := time.Now()
	r := &models.Registration{R3FinalizedAt: &now}
	assert.Equal(t, StateOpen, StateOf(r, 1))
	assert.Equal(t, StateFinalized, StateOf(r, 3))
}

func TestValidateImage(t *testing.T) {
	require.NoError(t, ValidateImage(""))
	require.NoError(t, ValidateImage("data:image/png;base64,iVBORw0KGgo="))
	assert.ErrorIs(t, ValidateImage("data:image/jpeg;base64,/9j/"), ErrInvalidImage)
	big := "data:image/png;base64," + strings.Repeat("A", MaxSignatureLen)
	assert.ErrorIs(t, ValidateImage(big), ErrInvalidImage)
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Anna Roth ")
	require.NoError(t, err)
	assert.Equal(t, "Anna Roth", name)
	_, err = ValidateName("   ")
	assert.ErrorIs(t, err, ErrMissingName)
}
