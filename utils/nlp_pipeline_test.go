package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinic-booking-chatbot/models"
)

func TestProcessDerivesContext(t *testing.T) {
	pipeline := NewNLPPipeline(nil)

	result := pipeline.Process("I want to book an appointment")
	assert.Equal(t, models.IntentBookAppointment, result.Intent)
	assert.True(t, result.Context.NeedsSpecialty)
	assert.False(t, result.Context.HasUrgency)
	assert.False(t, result.Context.IsEmergency)

	result = pipeline.Process("I have chest pain, emergency!")
	assert.True(t, result.Context.IsEmergency)
	assert.True(t, result.Context.HasUrgency)
	assert.Equal(t, []string{"cardiology"}, result.Context.SuggestedSpecialties)
	assert.Equal(t, []string{"pain", "chest pain"}, result.Context.DetectedSymptoms)
	assert.Equal(t, "I have chest pain, emergency!", result.Text)
}

func TestProcessUrgencyWithoutEmergency(t *testing.T) {
	result := NewNLPPipeline(nil).Process("urgent appointment please")

	assert.True(t, result.Context.HasUrgency)
	assert.False(t, result.Context.IsEmergency)
	assert.True(t, result.Context.NeedsSpecialty)
}

func TestProcessLimitsSuggestedSpecialties(t *testing.T) {
	result := NewNLPPipeline(nil).Process("heart trouble, a skin rash and my child is sick")

	assert.Equal(t, []string{"cardiology", "dermatology", "pediatrics"}, result.Entities.Specialties)
	assert.Equal(t, []string{"cardiology", "dermatology"}, result.Context.SuggestedSpecialties)
	assert.False(t, result.Context.NeedsSpecialty)
}
