package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmergencyMessage(t *testing.T) {
	entities := NewEntityExtractor(nil).Extract("I have chest pain, emergency!")

	assert.Equal(t, []string{"cardiology"}, entities.Specialties)
	assert.Equal(t, []string{"pain", "chest pain"}, entities.Symptoms)
	assert.Equal(t, []string{"emergency"}, entities.Urgency)
	assert.Empty(t, entities.Doctors)
	assert.Equal(t, SpecialtyMatchConfidence, entities.ConfidenceScores["cardiology"])
}

func TestExtractDoctorMentions(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	entities := extractor.Extract("I need to see Dr. Garcia about my skin rash")
	assert.Equal(t, []string{"Dr. Garcia"}, entities.Doctors)
	assert.Equal(t, []string{"dermatology"}, entities.Specialties)
	assert.Equal(t, []string{"rash"}, entities.Symptoms)

	entities = extractor.Extract("doctor smith or dr jones, then dr jones again")
	assert.Equal(t, []string{"Dr. Smith", "Dr. Jones", "Dr. Jones"}, entities.Doctors)
}

func TestExtractAddsSpecialtyOnce(t *testing.T) {
	entities := NewEntityExtractor(nil).Extract("heart palpitations and cardiac issues")
	assert.Equal(t, []string{"cardiology"}, entities.Specialties)
	assert.Len(t, entities.ConfidenceScores, 1)
}

func TestExtractNoMatchGivesEmptyLists(t *testing.T) {
	entities := NewEntityExtractor(nil).Extract("")

	assert.NotNil(t, entities.Specialties)
	assert.NotNil(t, entities.Symptoms)
	assert.NotNil(t, entities.Urgency)
	assert.NotNil(t, entities.Doctors)
	assert.Empty(t, entities.Specialties)
	assert.Empty(t, entities.ConfidenceScores)
}

func TestExtractUsesCustomLexicon(t *testing.T) {
	lexicon := &Lexicon{
		Specialties: []SpecialtyEntry{{Tag: "dentistry", Keywords: []string{"tooth", "teeth"}}},
		Symptoms:    []string{"toothache"},
	}
	entities := NewEntityExtractor(lexicon).Extract("My TOOTH hurts, bad toothache")

	assert.Equal(t, []string{"dentistry"}, entities.Specialties)
	assert.Equal(t, []string{"toothache"}, entities.Symptoms)
}
