package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinic-booking-chatbot/models"
)

func TestClassifyIntent(t *testing.T) {
	classifier := NewIntentClassifier(nil)

	tests := []struct {
		name       string
		message    string
		intent     models.Intent
		confidence float64
	}{
		{"booking", "I want to book an appointment", models.IntentBookAppointment, 0.6},
		{"greeting", "Hello", models.IntentGreeting, 0.3},
		{"cancel beats appointment", "cancel my appointment", models.IntentCancelAppointment, 0.6},
		{"info", "What are your hours and location?", models.IntentGetInfo, 0.6},
		{"check", "show appointments upcoming", models.IntentCheckAppointment, 0.6},
		{"tie goes to table order", "book or check", models.IntentBookAppointment, 0.3},
		{"capped", "book schedule appointment visit consultation", models.IntentBookAppointment, 1.0},
		{"unknown", "purple elephants", models.IntentUnknown, 0.1},
		{"short keyword inside word", "this is fine", models.IntentUnknown, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.ClassifyIntent(tt.message)
			assert.Equal(t, tt.intent, result.Intent)
			assert.InDelta(t, tt.confidence, result.Confidence, 1e-9)
		})
	}
}

func TestClassifyIntentIsDeterministic(t *testing.T) {
	classifier := NewIntentClassifier(nil)
	first := classifier.ClassifyIntent("hi, can I check or book?")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, classifier.ClassifyIntent("hi, can I check or book?"))
	}
}

func TestKeywordPatternWordStart(t *testing.T) {
	assert.True(t, keywordPattern("hi").MatchString("hi there"))
	assert.False(t, keywordPattern("hi").MatchString("this"))
	assert.False(t, keywordPattern("hi").MatchString("high"))
	assert.True(t, keywordPattern("book").MatchString("booking please"))
	assert.False(t, keywordPattern("book").MatchString("facebook"))

	ic := NewIntentClassifier(nil)
	assert.Equal(t, models.IntentUnknown, ic.ClassifyIntent("my facebook page").Intent)
}
