package utils

import (
	"strings"

	"clinic-booking-chatbot/models"
)

// SpecialtyEntry maps a specialty tag to the phrases that select it.
type SpecialtyEntry struct {
	Tag         string
	Keywords    []string
	Description string
}

// DisplayName turns "internal_medicine" into "Internal Medicine".
func (e SpecialtyEntry) DisplayName() string {
	return SpecialtyDisplayName(e.Tag)
}

// UrgencyTerm is an urgency keyword. Emergency terms interrupt the booking
// flow.
type UrgencyTerm struct {
	Phrase    string
	Emergency bool
}

// IntentPatterns lists keywords for one intent.
type IntentPatterns struct {
	Intent   models.Intent
	Keywords []string
}

// Lexicon is the single keyword table shared by entity extraction, intent
// classification and the booking flow. Order of every list is significant.
type Lexicon struct {
	Specialties []SpecialtyEntry
	Symptoms    []string
	Urgency     []UrgencyTerm
	Intents     []IntentPatterns
}

// DefaultLexicon returns the clinic's built-in lexicon.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Specialties: []SpecialtyEntry{
			{
				Tag:         "cardiology",
				Keywords:    []string{"heart", "cardiac", "cardio", "chest pain", "heart attack", "palpitations", "coronary", "blood pressure"},
				Description: "Heart and cardiovascular system",
			},
			{
				Tag:         "dermatology",
				Keywords:    []string{"skin", "rash", "acne", "dermat", "mole", "eczema", "psoriasis"},
				Description: "Skin, hair, and nail conditions",
			},
			{
				Tag:         "pediatrics",
				Keywords:    []string{"child", "baby", "pediatric", "kid", "infant", "vaccination"},
				Description: "Medical care for children and adolescents",
			},
			{
				Tag:         "neurology",
				Keywords:    []string{"brain", "headache", "migraine", "neurolog", "seizure", "memory", "stroke"},
				Description: "Brain and nervous system disorders",
			},
			{
				Tag:         "orthopedics",
				Keywords:    []string{"bone", "joint", "fracture", "orthopedic", "back pain", "arthritis", "knee"},
				Description: "Bones, joints, muscles, and ligaments",
			},
			{
				Tag:         "gynecology",
				Keywords:    []string{"women", "pregnancy", "gynec", "obstetric", "pap smear", "menstrual"},
				Description: "Women's reproductive health",
			},
			{
				Tag:         "psychiatry",
				Keywords:    []string{"mental", "depression", "anxiety", "psychiatr", "therapy", "stress", "mood"},
				Description: "Mental health and behavioral disorders",
			},
			{
				Tag:         "internal_medicine",
				Keywords:    []string{"internal medicine", "general", "internal", "checkup", "physical", "diabetes", "hypertension"},
				Description: "General adult medical care and prevention",
			},
		},
		Symptoms: []string{
			"pain", "fever", "cough", "headache", "nausea", "fatigue", "dizziness",
			"shortness of breath", "chest pain", "back pain", "joint pain", "rash",
			"swelling", "numbness", "weakness", "insomnia", "anxiety", "depression",
		},
		Urgency: []UrgencyTerm{
			{Phrase: "urgent"},
			{Phrase: "asap"},
			{Phrase: "emergency", Emergency: true},
			{Phrase: "immediately"},
			{Phrase: "soon"},
			{Phrase: "quickly"},
			{Phrase: "heart attack", Emergency: true},
			{Phrase: "stroke", Emergency: true},
			{Phrase: "can't breathe", Emergency: true},
			{Phrase: "cannot breathe", Emergency: true},
			{Phrase: "unconscious", Emergency: true},
			{Phrase: "severe bleeding", Emergency: true},
			{Phrase: "suicidal", Emergency: true},
			{Phrase: "overdose", Emergency: true},
			{Phrase: "poisoning", Emergency: true},
			{Phrase: "call 911", Emergency: true},
			{Phrase: "ambulance", Emergency: true},
		},
		Intents: []IntentPatterns{
			{
				Intent: models.IntentBookAppointment,
				Keywords: []string{
					"book", "schedule", "appointment", "make appointment", "see doctor",
					"visit", "consultation", "need to see", "want to see",
				},
			},
			{
				Intent: models.IntentCheckAppointment,
				Keywords: []string{
					"check", "check appointment", "my appointment", "when is", "appointment status",
					"what appointments", "show appointments", "upcoming",
				},
			},
			{
				Intent: models.IntentCancelAppointment,
				Keywords: []string{
					"cancel", "cancel my", "cancel appointment", "reschedule", "change appointment",
					"move appointment", "can't make", "need to cancel",
				},
			},
			{
				Intent: models.IntentGetInfo,
				Keywords: []string{
					"info", "hours", "location", "address", "phone", "contact", "cost", "price",
					"insurance", "specialties", "doctors available",
				},
			},
			{
				Intent: models.IntentGreeting,
				Keywords: []string{
					"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
					"help", "start over", "restart",
				},
			},
		},
	}
}

// Specialty returns the entry for a tag.
func (l *Lexicon) Specialty(tag string) (SpecialtyEntry, bool) {
	for _, s := range l.Specialties {
		if s.Tag == tag {
			return s, true
		}
	}
	return SpecialtyEntry{}, false
}

// MatchSpecialty resolves free text to a specialty tag: the tag itself, its
// display name, or any of its keywords.
func (l *Lexicon) MatchSpecialty(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, s := range l.Specialties {
		if strings.Contains(lower, s.Tag) || strings.Contains(lower, strings.ToLower(s.DisplayName())) {
			return s.Tag, true
		}
		for _, kw := range s.Keywords {
			if strings.Contains(lower, kw) {
				return s.Tag, true
			}
		}
	}
	return "", false
}

// IsEmergencyTerm reports whether an urgency entity marks an emergency.
func (l *Lexicon) IsEmergencyTerm(term string) bool {
	term = strings.ToLower(term)
	for _, u := range l.Urgency {
		if u.Emergency && strings.Contains(term, u.Phrase) {
			return true
		}
	}
	return false
}

// SpecialtyMenu returns the first n display names, used as quick replies.
func (l *Lexicon) SpecialtyMenu(n int) []string {
	if n > len(l.Specialties) {
		n = len(l.Specialties)
	}
	menu := make([]string, 0, n)
	for _, s := range l.Specialties[:n] {
		menu = append(menu, s.DisplayName())
	}
	return menu
}

// SpecialtyDisplayName title-cases a specialty tag.
func SpecialtyDisplayName(tag string) string {
	words := strings.Fields(strings.ReplaceAll(tag, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
