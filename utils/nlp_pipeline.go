package utils

import "clinic-booking-chatbot/models"

// NLPPipeline combines entity extraction and intent classification over one
// shared lexicon.
type NLPPipeline struct {
	lexicon    *Lexicon
	extractor  *EntityExtractor
	classifier *IntentClassifier
}

func NewNLPPipeline(lexicon *Lexicon) *NLPPipeline {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &NLPPipeline{
		lexicon:    lexicon,
		extractor:  NewEntityExtractor(lexicon),
		classifier: NewIntentClassifier(lexicon),
	}
}

func (p *NLPPipeline) Lexicon() *Lexicon {
	return p.lexicon
}

// Process runs both stages and derives the conversation context flags.
func (p *NLPPipeline) Process(text string) models.NLPResult {
	entities := p.extractor.Extract(text)
	intent := p.classifier.ClassifyIntent(text)

	suggested := entities.Specialties
	if len(suggested) > 2 {
		suggested = suggested[:2]
	}

	emergency := false
	for _, u := range entities.Urgency {
		if p.lexicon.IsEmergencyTerm(u) {
			emergency = true
			break
		}
	}

	return models.NLPResult{
		Text:       text,
		Intent:     intent.Intent,
		Confidence: intent.Confidence,
		Entities:   entities,
		Context: models.DerivedContext{
			NeedsSpecialty:       len(entities.Specialties) == 0 && intent.Intent == models.IntentBookAppointment,
			HasUrgency:           len(entities.Urgency) > 0,
			SuggestedSpecialties: suggested,
			DetectedSymptoms:     entities.Symptoms,
			IsEmergency:          emergency,
		},
	}
}
