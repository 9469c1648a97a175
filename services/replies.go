package services

import (
	"fmt"
	"strings"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

const (
	maxDoctorChoices    = 3
	maxTimeChoices      = 4
	specialtyMenuLength = 5
)

var mainMenu = []string{"Book appointment", "Hospital info", "FAQs"}

// replyBuilder renders every message the engine sends.
type replyBuilder struct {
	clinic  models.ClinicInfo
	lexicon *utils.Lexicon
}

func (r replyBuilder) welcome() models.Response {
	return models.GreetingResponse{Reply: models.Reply{
		Message: fmt.Sprintf("👋 Welcome to %s! I'm your virtual assistant. I can help you:\n\n"+
			"• Book new appointments\n"+
			"• Check existing appointments\n"+
			"• Get hospital information\n"+
			"• Answer frequently asked questions (FAQs)\n\n"+
			"How can I help you today?", r.clinic.Name),
		Suggestions: mainMenu,
	}}
}

func (r replyBuilder) fallback() models.Response {
	return models.FallbackResponse{Reply: models.Reply{
		Message: "I'm not sure how to help with that. You can ask me to:\n\n" +
			"• Book an appointment\n" +
			"• Get hospital information\n" +
			"• Answer FAQs\n\n" +
			"What would you like to do?",
		Suggestions: mainMenu,
	}}
}

func (r replyBuilder) emergency() models.Response {
	return models.EmergencyRedirectResponse{Reply: models.Reply{
		Message: fmt.Sprintf("🚨 Medical Emergency\n\n"+
			"• Call 911 immediately\n"+
			"• Emergency Department: %s - %s\n"+
			"• We are open 24/7 for emergency care\n\n"+
			"I can help you schedule a regular appointment once your emergency is addressed.",
			r.clinic.Name, r.clinic.Phone),
	}}
}

func (r replyBuilder) specialtyPrompt() models.Response {
	var b strings.Builder
	fmt.Fprintf(&b, "🏥 Book Appointment - %s\n\n", r.clinic.Name)
	for _, s := range r.lexicon.Specialties[:min(specialtyMenuLength, len(r.lexicon.Specialties))] {
		fmt.Fprintf(&b, "• %s: %s\n", s.DisplayName(), s.Description)
	}
	b.WriteString("\nWhich medical specialty do you need?")
	return models.SpecialtySelectionResponse{Reply: models.Reply{
		Message:     b.String(),
		Suggestions: r.lexicon.SpecialtyMenu(specialtyMenuLength),
	}}
}

func (r replyBuilder) doctorPrompt(specialty string, doctors []models.Doctor) models.Response {
	doctors = doctors[:min(maxDoctorChoices, len(doctors))]

	var b strings.Builder
	fmt.Fprintf(&b, "👨‍⚕️ Available doctors for %s:\n\n", utils.SpecialtyDisplayName(specialty))
	for _, d := range doctors {
		fmt.Fprintf(&b, "• %s - Available: %s\n", d.Name, strings.Join(d.AvailableDays[:min(3, len(d.AvailableDays))], ", "))
	}
	b.WriteString("\nWhich doctor would you prefer?")
	return models.DoctorSelectionResponse{
		Reply:     models.Reply{Message: b.String(), Suggestions: doctorNames(doctors)},
		Specialty: specialty,
		Doctors:   doctors,
	}
}

func (r replyBuilder) namePrompt() models.Response {
	return models.PatientInfoResponse{
		Reply:      models.Reply{Message: "📝 Patient Information\n\nWhat's the patient's full name?"},
		Collecting: models.SlotPatientName,
	}
}

func (r replyBuilder) phonePrompt() models.Response {
	return models.PatientInfoResponse{
		Reply:      models.Reply{Message: "📱 What's your contact phone number?"},
		Collecting: models.SlotPatientPhone,
	}
}

func (r replyBuilder) timePrompt(doctor models.Doctor) models.Response {
	times := doctor.AvailableTimes[:min(maxTimeChoices, len(doctor.AvailableTimes))]

	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Available time slots with %s:\n\n", doctor.Name)
	for _, t := range times {
		fmt.Fprintf(&b, "• %s\n", t)
	}
	b.WriteString("\nWhich time works best for you?")
	return models.TimeSelectionResponse{
		Reply:  models.Reply{Message: b.String(), Suggestions: times},
		Doctor: doctor.Name,
	}
}

func (r replyBuilder) confirmation(data models.BookingData, id int64) models.Response {
	return models.BookingConfirmationResponse{
		Reply: models.Reply{
			Message: fmt.Sprintf("✅ Appointment Confirmed! - %s\n\n"+
				"📋 Details:\n"+
				"• Patient: %s\n"+
				"• Doctor: %s\n"+
				"• Specialty: %s\n"+
				"• Date: %s\n"+
				"• Time: %s\n"+
				"• Appointment ID: #%d\n\n"+
				"📞 You'll receive a confirmation call within 24 hours.\n"+
				"💡 Please arrive 15 minutes early.",
				r.clinic.Name, data.PatientName, data.Doctor, utils.SpecialtyDisplayName(data.Specialty),
				data.Date, data.Time, id),
			Suggestions: []string{"Book another", "Hospital info", "FAQs"},
		},
		AppointmentID: id,
	}
}

func (r replyBuilder) bookingError(err error) models.Response {
	return models.ErrorResponse{
		Reply: models.Reply{
			Message: fmt.Sprintf("❌ Booking error: %v. Send any message to try again, reply \"cancel\" to drop this booking, or call %s.", err, r.clinic.Phone),
		},
		Cause: err.Error(),
	}
}

func (r replyBuilder) bookingAbandoned() models.Response {
	return models.InfoProvidedResponse{
		Reply: models.Reply{
			Message:     "Okay, I didn't book that appointment and cleared the details. Is there anything else I can help with?",
			Suggestions: mainMenu,
		},
		Topic: "cancellation",
	}
}

func (r replyBuilder) noDoctors(specialty string) models.Response {
	return models.ErrorResponse{
		Reply: models.Reply{
			Message: fmt.Sprintf("Sorry, we don't have doctors available for %s right now. Please try another specialty or call %s.",
				utils.SpecialtyDisplayName(specialty), r.clinic.Phone),
			Suggestions: r.lexicon.SpecialtyMenu(specialtyMenuLength),
		},
		Cause: "no doctors for " + specialty,
	}
}

func (r replyBuilder) catalogUnavailable(err error) models.Response {
	return models.ErrorResponse{
		Reply: models.Reply{
			Message: fmt.Sprintf("Sorry, I couldn't load our doctor schedule right now. Please try again or call %s.", r.clinic.Phone),
		},
		Cause: err.Error(),
	}
}

// retry re-asks for a slot. From the second failed attempt on, the clinic
// phone number is offered as a way out.
func (r replyBuilder) retry(slot models.Slot, suggestions []string, attempts int) models.Response {
	var msg string
	switch slot {
	case models.SlotSpecialty:
		msg = "Please select a medical specialty: " + strings.Join(r.lexicon.SpecialtyMenu(specialtyMenuLength), ", ") + "."
	case models.SlotDoctor:
		msg = "Please select one of the available doctors: " + strings.Join(suggestions, ", ") + "."
	case models.SlotPatientName:
		msg = "Please provide the patient's full name."
	case models.SlotPatientPhone:
		msg = "Please provide a valid phone number (e.g., 786-595-3900)."
	case models.SlotTime:
		msg = "Please select one of the available time slots."
	}
	if attempts >= 2 {
		msg += fmt.Sprintf(" You can also call us at %s.", r.clinic.Phone)
	}
	return models.RetryInputResponse{
		Reply: models.Reply{Message: msg, Suggestions: suggestions},
		Slot:  slot,
	}
}

func (r replyBuilder) checkPrompt() models.Response {
	return models.InfoProvidedResponse{
		Reply: models.Reply{
			Message: "📅 I can help you check your appointments.\n\nWhat's the full name used for the booking? You can also send your appointment ID (e.g., #12).",
		},
		Topic: "appointments",
	}
}

func (r replyBuilder) appointmentList(name string, appointments []models.Appointment) models.Response {
	if len(appointments) == 0 {
		return models.InfoProvidedResponse{
			Reply: models.Reply{
				Message:     fmt.Sprintf("I couldn't find any appointments for %s. Would you like to book one?", name),
				Suggestions: mainMenu,
			},
			Topic: "appointments",
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Appointments for %s:\n\n", name)
	for _, a := range appointments {
		fmt.Fprintf(&b, "• #%d %s with %s (%s) on %s at %s - %s\n",
			a.ID, utils.SpecialtyDisplayName(a.Specialty), a.Doctor, a.PatientName, a.Date, a.Time, a.Status)
	}
	return models.InfoProvidedResponse{
		Reply: models.Reply{Message: strings.TrimRight(b.String(), "\n"), Suggestions: mainMenu},
		Topic: "appointments",
	}
}

func (r replyBuilder) lookupFailed(err error) models.Response {
	return models.ErrorResponse{
		Reply: models.Reply{
			Message:     fmt.Sprintf("Sorry, I couldn't look up appointments right now. Please call %s.", r.clinic.Phone),
			Suggestions: mainMenu,
		},
		Cause: err.Error(),
	}
}

func (r replyBuilder) cancelInstructions() models.Response {
	return models.InfoProvidedResponse{
		Reply: models.Reply{
			Message: fmt.Sprintf("I can help you cancel your appointment. 📅\n\n"+
				"Send \"cancel #<appointment ID>\" (e.g., cancel #12), or call %s.\n\n"+
				"Cancellations must be made at least 24 hours in advance.", r.clinic.Phone),
			Suggestions: mainMenu,
		},
		Topic: "cancellation",
	}
}

func (r replyBuilder) cancelled(id int64) models.Response {
	return models.InfoProvidedResponse{
		Reply: models.Reply{
			Message:     fmt.Sprintf("✅ Appointment #%d has been cancelled.", id),
			Suggestions: []string{"Book appointment", "Hospital info"},
		},
		Topic: "cancellation",
	}
}

func (r replyBuilder) appointmentNotFound(id int64) models.Response {
	return models.ErrorResponse{
		Reply: models.Reply{
			Message:     fmt.Sprintf("I couldn't find appointment #%d. Please check the ID or call %s.", id, r.clinic.Phone),
			Suggestions: mainMenu,
		},
		Cause: models.ErrAppointmentNotFound.Error(),
	}
}

// info answers a get_info request with the topic the text asks about.
func (r replyBuilder) info(text string) models.Response {
	lower := strings.ToLower(text)
	topic := "general"
	var msg string
	switch {
	case containsAny(lower, "hours", "time", "open"):
		topic = "hours"
		msg = fmt.Sprintf("🕒 %s Hours:\n\n"+
			"• Emergency Department: 24/7 - Always open\n"+
			"• Outpatient Services: Monday - Friday 8:00 AM - 6:00 PM\n"+
			"• Visitor Hours: 7:00 AM - 9:00 PM daily\n\n"+
			"📞 Emergency: Call 911\n📱 Hospital: %s", r.clinic.Name, r.clinic.Phone)
	case containsAny(lower, "location", "address", "where"):
		topic = "location"
		msg = fmt.Sprintf("📍 %s Location:\n\n%s\n\n🚗 Free parking available for patients", r.clinic.Name, r.clinic.Address)
	case containsAny(lower, "phone", "contact", "call"):
		topic = "contact"
		msg = fmt.Sprintf("📞 Contact %s:\n\n"+
			"• Main Line: %s\n"+
			"• Billing: %s\n"+
			"• Insurance: %s\n"+
			"• Emergency: 911\n\n"+
			"✉️ Email: %s", r.clinic.Name, r.clinic.Phone, r.clinic.BillingPhone, r.clinic.InsurancePhone, r.clinic.Email)
	case containsAny(lower, "insurance", "cost", "price", "billing"):
		topic = "billing"
		msg = fmt.Sprintf("💳 Insurance and billing:\n\n"+
			"• Most insurance plans accepted\n"+
			"• Billing department: %s\n"+
			"• Insurance verification: %s", r.clinic.BillingPhone, r.clinic.InsurancePhone)
	case containsAny(lower, "specialties", "doctors"):
		topic = "specialties"
		var b strings.Builder
		fmt.Fprintf(&b, "🏥 Specialties at %s:\n\n", r.clinic.Name)
		for _, s := range r.lexicon.Specialties {
			fmt.Fprintf(&b, "• %s: %s\n", s.DisplayName(), s.Description)
		}
		msg = strings.TrimRight(b.String(), "\n")
	default:
		msg = fmt.Sprintf("ℹ️ %s Information:\n\n"+
			"📍 Address: %s\n"+
			"📞 Phone: %s\n"+
			"📧 Billing: %s\n\n"+
			"🏥 Services: 24/7 Emergency Care, Advanced Medical Services\n"+
			"💳 Insurance: Most plans accepted\n"+
			"🅿️ Parking: Free on-site\n\n"+
			"What specific information do you need?", r.clinic.Name, r.clinic.Address, r.clinic.Phone, r.clinic.BillingPhone)
	}
	return models.InfoProvidedResponse{
		Reply: models.Reply{Message: msg, Suggestions: []string{"Hours", "Location", "Contact", "Book appointment"}},
		Topic: topic,
	}
}

func doctorNames(doctors []models.Doctor) []string {
	names := make([]string, 0, len(doctors))
	for _, d := range doctors {
		names = append(names, d.Name)
	}
	return names
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
