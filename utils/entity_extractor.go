package utils

import (
	"regexp"
	"strings"

	"clinic-booking-chatbot/models"
)

// SpecialtyMatchConfidence marks "a keyword rule matched". It is a constant,
// not a calibrated probability.
const SpecialtyMatchConfidence = 0.85

var doctorMentionPattern = regexp.MustCompile(`\b(?:dr\.?|doctor)\s+([a-z]+)`)

type EntityExtractor struct {
	lexicon *Lexicon
}

func NewEntityExtractor(lexicon *Lexicon) *EntityExtractor {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &EntityExtractor{lexicon: lexicon}
}

// Extract scans text for specialties, symptoms, urgency markers and doctor
// mentions. Fields without a match are empty, never nil.
func (ee *EntityExtractor) Extract(text string) models.EntitySet {
	lower := strings.ToLower(text)
	entities := models.EntitySet{
		Specialties:      []string{},
		Symptoms:         []string{},
		Urgency:          []string{},
		Doctors:          []string{},
		ConfidenceScores: map[string]float64{},
	}

	for _, specialty := range ee.lexicon.Specialties {
		for _, keyword := range specialty.Keywords {
			if strings.Contains(lower, keyword) {
				entities.Specialties = append(entities.Specialties, specialty.Tag)
				entities.ConfidenceScores[specialty.Tag] = SpecialtyMatchConfidence
				break
			}
		}
	}

	for _, symptom := range ee.lexicon.Symptoms {
		if strings.Contains(lower, symptom) {
			entities.Symptoms = append(entities.Symptoms, symptom)
		}
	}

	for _, term := range ee.lexicon.Urgency {
		if strings.Contains(lower, term.Phrase) {
			entities.Urgency = append(entities.Urgency, term.Phrase)
		}
	}

	for _, match := range doctorMentionPattern.FindAllStringSubmatch(lower, -1) {
		entities.Doctors = append(entities.Doctors, "Dr. "+strings.ToUpper(match[1][:1])+match[1][1:])
	}

	return entities
}
