package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSpecialty(t *testing.T) {
	lexicon := DefaultLexicon()

	tests := map[string]string{
		"cardiology":           "cardiology",
		"Internal Medicine":    "internal_medicine",
		"internal_medicine":    "internal_medicine",
		"my knee hurts":        "orthopedics",
		"Neurology please":     "neurology",
		"something for my kid": "pediatrics",
	}
	for input, want := range tests {
		got, ok := lexicon.MatchSpecialty(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := lexicon.MatchSpecialty("xyz")
	assert.False(t, ok)
}

func TestIsEmergencyTerm(t *testing.T) {
	lexicon := DefaultLexicon()

	assert.True(t, lexicon.IsEmergencyTerm("emergency"))
	assert.True(t, lexicon.IsEmergencyTerm("Heart Attack"))
	assert.False(t, lexicon.IsEmergencyTerm("urgent"))
	assert.False(t, lexicon.IsEmergencyTerm("soon"))
}

func TestSpecialtyMenu(t *testing.T) {
	lexicon := DefaultLexicon()

	assert.Equal(t, []string{"Cardiology", "Dermatology", "Pediatrics", "Neurology", "Orthopedics"}, lexicon.SpecialtyMenu(5))
	assert.Len(t, lexicon.SpecialtyMenu(100), len(lexicon.Specialties))
}

func TestSpecialtyDisplayName(t *testing.T) {
	assert.Equal(t, "Internal Medicine", SpecialtyDisplayName("internal_medicine"))
	assert.Equal(t, "Cardiology", SpecialtyDisplayName("cardiology"))
	assert.Equal(t, "", SpecialtyDisplayName(""))
}
